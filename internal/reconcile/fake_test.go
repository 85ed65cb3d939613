package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ppiankov/reliefboard/internal/model"
)

var errInjected = errors.New("injected failure")

// fakeBoard is an in-memory board that records every write
type fakeBoard struct {
	mu     sync.Mutex
	state  model.Board
	nextID int
	calls  []string
	// fail makes the named method fail; the predicate sees the call argument
	fail map[string]func(arg string) bool
}

func newFakeBoard(id string) *fakeBoard {
	return &fakeBoard{state: model.Board{ID: id}, fail: map[string]func(string) bool{}}
}

func (f *fakeBoard) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeBoard) record(method, arg string) error {
	f.calls = append(f.calls, method)
	if pred, ok := f.fail[method]; ok && pred(arg) {
		return errInjected
	}
	return nil
}

// snapshot returns a deep copy of the board state
func (f *fakeBoard) snapshot() *model.Board {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := model.Board{ID: f.state.ID}
	b.Lists = append(b.Lists, f.state.Lists...)
	b.Labels = append(b.Labels, f.state.Labels...)
	for _, c := range f.state.Cards {
		cp := c
		cp.LabelIDs = append([]string(nil), c.LabelIDs...)
		cp.Attachments = append([]model.Attachment(nil), c.Attachments...)
		cp.Checklists = nil
		for _, cl := range c.Checklists {
			clc := cl
			clc.Items = append([]model.CheckItem(nil), cl.Items...)
			cp.Checklists = append(cp.Checklists, clc)
		}
		b.Cards = append(b.Cards, cp)
	}
	return &b
}

func (f *fakeBoard) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeBoard) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeBoard) writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBoard) card(id string) *model.Card {
	for i := range f.state.Cards {
		if f.state.Cards[i].ID == id {
			return &f.state.Cards[i]
		}
	}
	return nil
}

func (f *fakeBoard) checklist(id string) *model.Checklist {
	for i := range f.state.Cards {
		for j := range f.state.Cards[i].Checklists {
			if f.state.Cards[i].Checklists[j].ID == id {
				return &f.state.Cards[i].Checklists[j]
			}
		}
	}
	return nil
}

func (f *fakeBoard) addList(name string) model.List {
	l := model.List{ID: f.id("list"), Name: name}
	f.state.Lists = append(f.state.Lists, l)
	return l
}

func (f *fakeBoard) addLabel(name, color string) model.Label {
	l := model.Label{ID: f.id("label"), Name: name, Color: color}
	f.state.Labels = append(f.state.Labels, l)
	return l
}

func (f *fakeBoard) addCard(c model.Card) *model.Card {
	if c.ID == "" {
		c.ID = f.id("card")
	}
	f.state.Cards = append(f.state.Cards, c)
	return &f.state.Cards[len(f.state.Cards)-1]
}

func (f *fakeBoard) CreateList(_ context.Context, _ string, name string, pos float64) (model.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateList", name); err != nil {
		return model.List{}, err
	}
	l := f.addList(name)
	l.Pos = pos
	return l, nil
}

func (f *fakeBoard) CreateLabel(_ context.Context, _ string, name, color string) (model.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateLabel", name); err != nil {
		return model.Label{}, err
	}
	return f.addLabel(name, color), nil
}

func (f *fakeBoard) CreateCard(_ context.Context, nc model.NewCard) (model.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateCard", nc.Name); err != nil {
		return model.Card{}, err
	}
	c := f.addCard(model.Card{
		Name:     nc.Name,
		Desc:     nc.Desc,
		ListID:   nc.ListID,
		Pos:      nc.Pos,
		LabelIDs: append([]string(nil), nc.LabelIDs...),
	})
	return *c, nil
}

func (f *fakeBoard) UpdateCard(_ context.Context, cardID string, fields model.CardFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateCard", cardID); err != nil {
		return err
	}
	c := f.card(cardID)
	if c == nil {
		return fmt.Errorf("no card %s", cardID)
	}
	if fields.Name != nil {
		c.Name = *fields.Name
	}
	if fields.Desc != nil {
		c.Desc = *fields.Desc
	}
	if fields.ListID != nil {
		c.ListID = *fields.ListID
	}
	if fields.Pos != nil {
		c.Pos = *fields.Pos
	}
	if fields.Closed != nil {
		c.Closed = *fields.Closed
	}
	return nil
}

func (f *fakeBoard) AddLabel(_ context.Context, cardID, labelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AddLabel", labelID); err != nil {
		return err
	}
	c := f.card(cardID)
	c.LabelIDs = append(c.LabelIDs, labelID)
	return nil
}

func (f *fakeBoard) RemoveLabel(_ context.Context, cardID, labelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RemoveLabel", labelID); err != nil {
		return err
	}
	c := f.card(cardID)
	kept := c.LabelIDs[:0]
	for _, id := range c.LabelIDs {
		if id != labelID {
			kept = append(kept, id)
		}
	}
	c.LabelIDs = kept
	return nil
}

func (f *fakeBoard) AddAttachment(_ context.Context, cardID, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AddAttachment", link); err != nil {
		return err
	}
	c := f.card(cardID)
	c.Attachments = append(c.Attachments, model.Attachment{ID: f.id("att"), URL: link})
	return nil
}

func (f *fakeBoard) CreateChecklist(_ context.Context, cardID, name string) (model.Checklist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateChecklist", name); err != nil {
		return model.Checklist{}, err
	}
	c := f.card(cardID)
	cl := model.Checklist{ID: f.id("checklist"), Name: name, CardID: cardID}
	c.Checklists = append(c.Checklists, cl)
	return cl, nil
}

func (f *fakeBoard) AddCheckItem(_ context.Context, checklistID, name string, pos float64) (model.CheckItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AddCheckItem", name); err != nil {
		return model.CheckItem{}, err
	}
	cl := f.checklist(checklistID)
	item := model.CheckItem{ID: f.id("item"), Name: name, Pos: pos}
	cl.Items = append(cl.Items, item)
	return item, nil
}

func (f *fakeBoard) UpdateCheckItem(_ context.Context, cardID, itemID, name string, pos float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateCheckItem", itemID); err != nil {
		return err
	}
	c := f.card(cardID)
	for i := range c.Checklists {
		for j := range c.Checklists[i].Items {
			if c.Checklists[i].Items[j].ID == itemID {
				c.Checklists[i].Items[j].Name = name
				c.Checklists[i].Items[j].Pos = pos
				return nil
			}
		}
	}
	return fmt.Errorf("no item %s", itemID)
}

func (f *fakeBoard) DeleteCheckItem(_ context.Context, checklistID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteCheckItem", itemID); err != nil {
		return err
	}
	cl := f.checklist(checklistID)
	kept := cl.Items[:0]
	for _, item := range cl.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cl.Items = kept
	return nil
}

var _ Board = (*fakeBoard)(nil)
