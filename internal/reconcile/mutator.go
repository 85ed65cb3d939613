package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/model"
	"github.com/ppiankov/reliefboard/internal/worker"
)

// CardPlan is everything that has to change on one card
type CardPlan struct {
	Fields       model.CardFields
	AddLabels    []model.Label
	RemoveLabels []model.Label
	Checklists   []ChecklistPlan
}

// Empty reports whether the plan performs no writes
func (p CardPlan) Empty() bool {
	if !p.Fields.Empty() || len(p.AddLabels) > 0 || len(p.RemoveLabels) > 0 {
		return false
	}
	for _, c := range p.Checklists {
		if !c.Empty() {
			return false
		}
	}
	return true
}

// Outcome is what applying a plan did
type Outcome struct {
	Changed bool
	Failed  int
}

// Mutator applies card plans. Every write is its own call; a failed label or
// check item is logged and the others still run.
type Mutator struct {
	board  Board
	batch  *worker.Batch
	logger *zap.Logger
}

// NewMutator creates a mutator. Label and check item calls run through batch.
func NewMutator(board Board, batch *worker.Batch, logger *zap.Logger) *Mutator {
	if batch == nil {
		batch = worker.NewBatch(1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mutator{board: board, batch: batch, logger: logger}
}

// Apply converges an existing card
func (m *Mutator) Apply(ctx context.Context, card *model.Card, plan CardPlan) Outcome {
	log := m.logger.With(zap.String("card", card.ID), zap.String("name", card.Name))
	if plan.Empty() {
		log.Debug("card unchanged")
		return Outcome{}
	}

	var out Outcome
	if !plan.Fields.Empty() {
		if err := m.board.UpdateCard(ctx, card.ID, plan.Fields); err != nil {
			err = fmt.Errorf("%w: card %s: %w", model.ErrCardMutationFailed, card.ID, err)
			log.Error("card update failed", zap.Strings("fields", plan.Fields.Changed()), zap.Error(err))
			out.Failed++
		} else {
			out.Changed = true
		}
	}

	out.merge(m.applyLabels(ctx, card.ID, plan.AddLabels, plan.RemoveLabels))
	for _, cl := range plan.Checklists {
		out.merge(m.applyChecklist(ctx, card.ID, cl))
	}

	if out.Changed {
		log.Info("card updated",
			zap.Strings("fields", plan.Fields.Changed()),
			zap.Int("labels_added", len(plan.AddLabels)),
			zap.Int("labels_removed", len(plan.RemoveLabels)),
			zap.Int("failed", out.Failed),
		)
	}
	return out
}

// Create makes a new card in one call, attaches its canonical URL and fills
// its checklists. An error means the card was not created.
func (m *Mutator) Create(ctx context.Context, card model.NewCard, link string, checklists []ChecklistPlan) (model.Card, Outcome, error) {
	created, err := m.board.CreateCard(ctx, card)
	if err != nil {
		return model.Card{}, Outcome{Failed: 1}, fmt.Errorf("%w: create %q: %w", model.ErrCardMutationFailed, card.Name, err)
	}
	log := m.logger.With(zap.String("card", created.ID), zap.String("name", created.Name))
	out := Outcome{Changed: true}

	if err := m.board.AddAttachment(ctx, created.ID, link); err != nil {
		err = fmt.Errorf("%w: attach %s: %w", model.ErrCardMutationFailed, link, err)
		log.Error("attachment failed", zap.Error(err))
		out.Failed++
	}
	for _, cl := range checklists {
		out.merge(m.applyChecklist(ctx, created.ID, cl))
	}

	log.Info("card created", zap.String("url", link), zap.Int("labels", len(card.LabelIDs)))
	return created, out, nil
}

// Archive closes a card
func (m *Mutator) Archive(ctx context.Context, card *model.Card) error {
	closed := true
	if err := m.board.UpdateCard(ctx, card.ID, model.CardFields{Closed: &closed}); err != nil {
		return fmt.Errorf("%w: archive %s: %w", model.ErrCardMutationFailed, card.ID, err)
	}
	m.logger.Info("card archived", zap.String("card", card.ID), zap.String("name", card.Name))
	return nil
}

func (o *Outcome) merge(other Outcome) {
	o.Changed = o.Changed || other.Changed
	o.Failed += other.Failed
}

// run executes ops through the batch, logging every failure under sentinel
func (m *Mutator) run(ctx context.Context, cardID string, sentinel error, ops []worker.Op) Outcome {
	if len(ops) == 0 {
		return Outcome{}
	}
	var out Outcome
	for _, res := range m.batch.Run(ctx, ops) {
		if res.Err == nil {
			out.Changed = true
			m.logger.Debug(res.Name, zap.String("card", cardID))
			continue
		}
		err := fmt.Errorf("%w: %s: %w", sentinel, res.Name, res.Err)
		m.logger.Error("board write failed", zap.String("card", cardID), zap.Error(err))
		out.Failed++
	}
	return out
}

func (m *Mutator) applyLabels(ctx context.Context, cardID string, add, remove []model.Label) Outcome {
	ops := make([]worker.Op, 0, len(add)+len(remove))
	for _, l := range remove {
		ops = append(ops, worker.Op{
			Name: fmt.Sprintf("remove label %q", l.Name),
			Run: func(ctx context.Context) error {
				return m.board.RemoveLabel(ctx, cardID, l.ID)
			},
		})
	}
	for _, l := range add {
		ops = append(ops, worker.Op{
			Name: fmt.Sprintf("add label %q", l.Name),
			Run: func(ctx context.Context) error {
				return m.board.AddLabel(ctx, cardID, l.ID)
			},
		})
	}
	return m.run(ctx, cardID, model.ErrLabelMutationFailed, ops)
}

func (m *Mutator) applyChecklist(ctx context.Context, cardID string, plan ChecklistPlan) Outcome {
	if plan.Empty() {
		return Outcome{}
	}

	var out Outcome
	checklistID := plan.ChecklistID
	if checklistID == "" {
		created, err := m.board.CreateChecklist(ctx, cardID, plan.Name)
		if err != nil {
			err = fmt.Errorf("%w: checklist %q: %w", model.ErrChecklistItemMutationFailed, plan.Name, err)
			m.logger.Error("checklist create failed", zap.String("card", cardID), zap.Error(err))
			return Outcome{Failed: plan.Ops()}
		}
		checklistID = created.ID
		out.Changed = true
		m.logger.Debug("checklist created", zap.String("card", cardID), zap.String("checklist", plan.Name))
	}

	ops := make([]worker.Op, 0, plan.Ops())
	for _, id := range plan.Delete {
		ops = append(ops, worker.Op{
			Name: fmt.Sprintf("%s: delete item %s", plan.Name, id),
			Run: func(ctx context.Context) error {
				return m.board.DeleteCheckItem(ctx, checklistID, id)
			},
		})
	}
	for _, u := range plan.Update {
		ops = append(ops, worker.Op{
			Name: fmt.Sprintf("%s: update item %s", plan.Name, u.ItemID),
			Run: func(ctx context.Context) error {
				return m.board.UpdateCheckItem(ctx, cardID, u.ItemID, u.Name, u.Pos)
			},
		})
	}
	for _, a := range plan.Add {
		ops = append(ops, worker.Op{
			Name: fmt.Sprintf("%s: add item %s", plan.Name, a.Name),
			Run: func(ctx context.Context) error {
				_, err := m.board.AddCheckItem(ctx, checklistID, a.Name, a.Pos)
				return err
			},
		})
	}
	out.merge(m.run(ctx, cardID, model.ErrChecklistItemMutationFailed, ops))
	return out
}
