package cache

import (
	"github.com/ppiankov/reliefboard/internal/model"
)

// Registry resolves board lists by name and labels by name or id for one run
type Registry struct {
	lists  *Store[model.List]
	labels *Store[model.Label]
}

// NewRegistry indexes the lists and labels of a board snapshot. When a board
// holds several labels with the same name, the first one wins.
func NewRegistry(board *model.Board) *Registry {
	r := &Registry{
		lists:  NewStore[model.List](),
		labels: NewStore[model.Label](),
	}
	if board == nil {
		return r
	}
	for _, l := range board.Lists {
		r.AddList(l)
	}
	for _, l := range board.Labels {
		r.AddLabel(l)
	}
	return r
}

// AddList indexes a list
func (r *Registry) AddList(l model.List) {
	r.lists.Add(ListKey(l.Name), l)
}

// AddLabel indexes a label
func (r *Registry) AddLabel(l model.Label) {
	if l.Name != "" {
		r.labels.Add(LabelKey(l.Name), l)
	}
	r.labels.Set(IDKey("label", l.ID), l)
}

// List finds a list by exact name
func (r *Registry) List(name string) (model.List, bool) {
	return r.lists.Get(ListKey(name))
}

// Label finds a label by exact name
func (r *Registry) Label(name string) (model.Label, bool) {
	return r.labels.Get(LabelKey(name))
}

// LabelByID finds a label by id
func (r *Registry) LabelByID(id string) (model.Label, bool) {
	return r.labels.Get(IDKey("label", id))
}
