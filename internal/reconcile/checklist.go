package reconcile

import (
	"strings"

	"github.com/ppiankov/reliefboard/internal/model"
)

// checkItemStep spaces managed items so manual items can sit between them
const checkItemStep = 1024

// ItemText renders a link as checklist item text
func ItemText(l model.Link) string {
	title := strings.TrimSpace(l.Title)
	if title == "" {
		title = l.URL
	}
	return "[" + title + "](" + l.URL + ")"
}

// ItemKey recovers the URL of a checklist item written by ItemText. Items
// without a markdown link are not managed.
func ItemKey(text string) (string, bool) {
	i := strings.LastIndex(text, "](")
	if i < 0 {
		return "", false
	}
	key := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text[i+2:]), ")"))
	if key == "" {
		return "", false
	}
	return key, true
}

// ItemPos is the position of the i-th desired item
func ItemPos(i int) float64 {
	return float64((i + 1) * checkItemStep)
}

// NewItem is a check item to add
type NewItem struct {
	Name string
	Pos  float64
}

// ItemUpdate renames or moves an existing check item
type ItemUpdate struct {
	ItemID string
	Name   string
	Pos    float64
}

// ChecklistPlan is the set of item operations that converge one checklist.
// An empty ChecklistID means the checklist has to be created first.
type ChecklistPlan struct {
	Name        string
	ChecklistID string
	Add         []NewItem
	Update      []ItemUpdate
	Delete      []string
}

// Empty reports whether the plan performs no writes
func (p ChecklistPlan) Empty() bool {
	return len(p.Add) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// Ops returns the number of item operations in the plan
func (p ChecklistPlan) Ops() int {
	return len(p.Add) + len(p.Update) + len(p.Delete)
}

// DiffChecklist compares an existing checklist (nil when the card has none by
// that name) with the desired ordered links. Items whose text holds no link
// are left alone. When several items carry the same link the first is kept
// and the others deleted.
func DiffChecklist(name string, current *model.Checklist, desired []model.Link) ChecklistPlan {
	plan := ChecklistPlan{Name: name}
	if current != nil {
		plan.ChecklistID = current.ID
	}

	type want struct {
		name string
		pos  float64
	}
	wanted := make(map[string]want, len(desired))
	order := make([]string, 0, len(desired))
	for _, l := range desired {
		key := strings.TrimSpace(l.URL)
		if key == "" {
			continue
		}
		if _, dup := wanted[key]; dup {
			continue
		}
		wanted[key] = want{name: ItemText(model.Link{Title: l.Title, URL: key}), pos: ItemPos(len(order))}
		order = append(order, key)
	}

	seen := make(map[string]bool)
	if current != nil {
		for _, item := range current.Items {
			key, ok := ItemKey(item.Name)
			if !ok {
				continue
			}
			w, keep := wanted[key]
			if !keep || seen[key] {
				plan.Delete = append(plan.Delete, item.ID)
				continue
			}
			seen[key] = true
			if item.Name != w.name || item.Pos != w.pos {
				plan.Update = append(plan.Update, ItemUpdate{ItemID: item.ID, Name: w.name, Pos: w.pos})
			}
		}
	}

	for _, key := range order {
		if seen[key] {
			continue
		}
		w := wanted[key]
		plan.Add = append(plan.Add, NewItem{Name: w.name, Pos: w.pos})
	}
	return plan
}

// findChecklist returns the first checklist of the card with the given name
func findChecklist(card *model.Card, name string) *model.Checklist {
	if card == nil {
		return nil
	}
	for i := range card.Checklists {
		if card.Checklists[i].Name == name {
			return &card.Checklists[i]
		}
	}
	return nil
}
