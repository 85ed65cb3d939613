package reconcile

import (
	"context"

	"github.com/ppiankov/reliefboard/internal/model"
)

// Board is the set of board writes reconciliation performs.
// *trello.Client implements it.
type Board interface {
	CreateList(ctx context.Context, boardID, name string, pos float64) (model.List, error)
	CreateLabel(ctx context.Context, boardID, name, color string) (model.Label, error)
	CreateCard(ctx context.Context, card model.NewCard) (model.Card, error)
	UpdateCard(ctx context.Context, cardID string, fields model.CardFields) error
	AddLabel(ctx context.Context, cardID, labelID string) error
	RemoveLabel(ctx context.Context, cardID, labelID string) error
	AddAttachment(ctx context.Context, cardID, link string) error
	CreateChecklist(ctx context.Context, cardID, name string) (model.Checklist, error)
	AddCheckItem(ctx context.Context, checklistID, name string, pos float64) (model.CheckItem, error)
	UpdateCheckItem(ctx context.Context, cardID, itemID, name string, pos float64) error
	DeleteCheckItem(ctx context.Context, checklistID, itemID string) error
}
