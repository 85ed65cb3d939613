package reconcile

import (
	"sort"

	"github.com/ppiankov/reliefboard/internal/model"
)

// SelectWarning returns the rule with the highest threshold strictly exceeded
// by days. At most one warning applies.
func SelectWarning(days int, rules []model.WarningRule) (model.WarningRule, bool) {
	var (
		best  model.WarningRule
		found bool
	)
	for _, r := range rules {
		if days > r.Days && (!found || r.Days > best.Days) {
			best = r
			found = true
		}
	}
	return best, found
}

// LabelSet is a set of label names
type LabelSet map[string]bool

// NewLabelSet builds a set from label specs
func NewLabelSet(specs ...model.LabelSpec) LabelSet {
	s := make(LabelSet, len(specs))
	for _, l := range specs {
		if l.Name != "" {
			s[l.Name] = true
		}
	}
	return s
}

// Names returns the sorted names in the set
func (s LabelSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DiffLabels compares the label names on a card with the desired ones. Managed
// labels missing from desired are removed; labels outside the managed set are
// never removed, so humans can annotate cards freely.
func DiffLabels(current []string, desired, managed LabelSet) (add, remove []string) {
	have := make(LabelSet, len(current))
	for _, name := range current {
		have[name] = true
		if managed[name] && !desired[name] {
			remove = append(remove, name)
		}
	}
	for _, name := range desired.Names() {
		if !have[name] {
			add = append(add, name)
		}
	}
	sort.Strings(remove)
	return add, remove
}
