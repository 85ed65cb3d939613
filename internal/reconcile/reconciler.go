// Package reconcile converges a Trello board onto a ReliefWeb entity
// collection: cards are matched to entities by their canonical URL attachment
// and only the differences are written back.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/cache"
	"github.com/ppiankov/reliefboard/internal/model"
	"github.com/ppiankov/reliefboard/internal/worker"
)

// PositionBase minus the entity id is the card position, so newer entities
// sort to the top of their list.
const PositionBase = 10_000_000

// TimestampLayout formats the "last update" header
const TimestampLayout = time.RFC3339

// Position returns the card position of an entity
func Position(e model.Entity) float64 {
	return float64(PositionBase - e.ID)
}

// Options tune a Reconciler
type Options struct {
	Concurrency int
	Logger      *zap.Logger
	Now         func() time.Time

	// TagVocabulary is every tag name the connector can derive. Colorless
	// board labels named in it are managed even when no current entity
	// carries them, so a tag dropped upstream is removed from its cards.
	TagVocabulary []string
}

// Reconciler runs one connector against one board. It holds no state between
// runs; every Run builds its lookups from the snapshot it is given.
type Reconciler struct {
	conn    Connector
	board   Board
	mutator    *Mutator
	logger     *zap.Logger
	now        func() time.Time
	vocabulary LabelSet
}

// New creates a reconciler for conn writing through board
func New(conn Connector, board Board, opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("connector", string(conn.Kind())))
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	vocabulary := NewLabelSet()
	for _, name := range opts.TagVocabulary {
		vocabulary[name] = true
	}
	return &Reconciler{
		conn:       conn,
		board:      board,
		mutator:    NewMutator(board, worker.NewBatch(opts.Concurrency), logger),
		logger:     logger,
		now:        now,
		vocabulary: vocabulary,
	}
}

// run is the state of one Run call
type run struct {
	registry     *cache.Registry
	managedLists map[string]bool
	managed      LabelSet
	timestamp    string
	result       Result
}

// Run reconciles entities onto the board snapshot. Only provisioning failures
// are returned; card level failures are logged and counted in the result.
func (r *Reconciler) Run(ctx context.Context, snapshot *model.Board, entities []model.Entity) (Result, error) {
	if snapshot == nil {
		return Result{}, fmt.Errorf("%w: no snapshot", model.ErrBoardUnavailable)
	}
	cfg := r.conn.Config()
	st := &run{
		registry:     cache.NewRegistry(snapshot),
		managedLists: make(map[string]bool),
		timestamp:    r.now().UTC().Format(TimestampLayout),
		result:       Result{Connector: r.conn.Kind(), Entities: len(entities)},
	}

	managedLabels := r.conn.ManagedLabels(entities)
	prov := NewProvisioner(r.board, snapshot.ID, st.registry, r.logger)
	if err := prov.EnsureLists(ctx, cfg.Lists); err != nil {
		return st.result, err
	}
	if err := prov.EnsureLabels(ctx, managedLabels); err != nil {
		return st.result, err
	}
	st.result.ListsCreated, st.result.LabelsCreated = prov.Created()

	for _, l := range cfg.Lists {
		if list, ok := st.registry.List(l.Name); ok {
			st.managedLists[list.ID] = true
		}
	}
	st.managed = NewLabelSet(managedLabels...)
	for _, l := range snapshot.Labels {
		if l.Color == "" && r.vocabulary[l.Name] {
			st.managed[l.Name] = true
		}
	}

	matcher := NewMatcher(r.conn.Pattern(), entities, r.logger)
	index := matcher.Match(snapshot.Cards)
	consumed := make(map[string]bool, len(index))

	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return st.result, err
		}
		if card, ok := index[e.URL]; ok {
			if consumed[card.ID] {
				continue
			}
			consumed[card.ID] = true
			r.update(ctx, st, card, e)
			continue
		}
		r.create(ctx, st, e)
	}

	r.archive(ctx, st, snapshot.Cards, index, consumed)

	r.logger.Info("connector run finished", st.result.Field())
	return st.result, nil
}

// target resolves the list an entity belongs in
func (r *Reconciler) target(st *run, e model.Entity) (model.List, bool) {
	lc, ok := r.conn.Config().ListFor(e.Status)
	if !ok {
		return model.List{}, false
	}
	return st.registry.List(lc.Name)
}

// desiredLabels resolves the labels an entity should carry
func (r *Reconciler) desiredLabels(st *run, e model.Entity) (LabelSet, []model.Label) {
	specs := r.conn.Labels(e)
	set := make(LabelSet, len(specs))
	labels := make([]model.Label, 0, len(specs))
	for _, s := range specs {
		if set[s.Name] {
			continue
		}
		l, ok := st.registry.Label(s.Name)
		if !ok {
			r.logger.Warn("label missing from board", zap.String("label", s.Name))
			continue
		}
		set[s.Name] = true
		labels = append(labels, l)
	}
	return set, labels
}

// body renders the card description. The stored timestamp is kept unless the
// body text changed.
func (r *Reconciler) body(st *run, e model.Entity, stored string) string {
	text := NormalizeText(e.Body)
	updated := st.timestamp
	if stored != "" {
		prev, _ := ParseBody(stored)
		if prev.Updated != "" && prev.Text == text {
			updated = prev.Updated
		}
	}
	return Body{Updated: updated, Text: text, Footers: r.conn.Footers(e)}.Encode()
}

func (r *Reconciler) checklists(e model.Entity, card *model.Card) []ChecklistPlan {
	if !r.conn.WithChecklists() {
		return nil
	}
	desired := r.conn.Checklists(e)
	plans := make([]ChecklistPlan, 0, len(desired))
	for _, d := range desired {
		plans = append(plans, DiffChecklist(d.Name, findChecklist(card, d.Name), d.Links))
	}
	return plans
}

// plan computes the changes that bring card in line with e
func (r *Reconciler) plan(st *run, card *model.Card, e model.Entity, list model.List) CardPlan {
	var plan CardPlan

	if card.Name != e.Name {
		name := e.Name
		plan.Fields.Name = &name
	}
	if st.managedLists[card.ListID] {
		if card.ListID != list.ID {
			id := list.ID
			plan.Fields.ListID = &id
		}
		if pos := Position(e); math.Round(card.Pos) != pos {
			plan.Fields.Pos = &pos
		}
	}
	if card.Closed {
		open := false
		plan.Fields.Closed = &open
	}
	if desc := r.body(st, e, card.Desc); desc != card.Desc {
		plan.Fields.Desc = &desc
	}

	desired, labels := r.desiredLabels(st, e)
	current := make([]string, 0, len(card.LabelIDs))
	for _, id := range card.LabelIDs {
		if l, ok := st.registry.LabelByID(id); ok {
			current = append(current, l.Name)
		}
	}
	add, remove := DiffLabels(current, desired, st.managed)
	if len(add) > 0 {
		want := NewLabelSet()
		for _, name := range add {
			want[name] = true
		}
		for _, l := range labels {
			if want[l.Name] {
				plan.AddLabels = append(plan.AddLabels, l)
			}
		}
	}
	if len(remove) > 0 {
		drop := NewLabelSet()
		for _, name := range remove {
			drop[name] = true
		}
		// remove by the ids actually on the card, so duplicate names on the
		// board are cleaned up too
		for _, id := range card.LabelIDs {
			if l, ok := st.registry.LabelByID(id); ok && drop[l.Name] {
				plan.RemoveLabels = append(plan.RemoveLabels, l)
			}
		}
	}

	plan.Checklists = r.checklists(e, card)
	return plan
}

func (r *Reconciler) update(ctx context.Context, st *run, card *model.Card, e model.Entity) {
	list, ok := r.target(st, e)
	if !ok && st.managedLists[card.ListID] {
		r.logger.Warn("no list for status, card left in place",
			zap.Int("entity", e.ID), zap.String("status", e.Status), zap.String("card", card.ID))
	}
	if !ok {
		list = model.List{ID: card.ListID}
	}

	out := r.mutator.Apply(ctx, card, r.plan(st, card, e, list))
	st.result.Failed += out.Failed
	if out.Changed {
		st.result.Updated++
	} else if out.Failed == 0 {
		st.result.Unchanged++
	}
}

func (r *Reconciler) create(ctx context.Context, st *run, e model.Entity) {
	list, ok := r.target(st, e)
	if !ok {
		r.logger.Warn("no list for status, entity skipped",
			zap.Int("entity", e.ID), zap.String("status", e.Status))
		st.result.Skipped++
		return
	}

	_, labels := r.desiredLabels(st, e)
	ids := make([]string, 0, len(labels))
	for _, l := range labels {
		ids = append(ids, l.ID)
	}
	card := model.NewCard{
		Name:     e.Name,
		Desc:     r.body(st, e, ""),
		ListID:   list.ID,
		Pos:      Position(e),
		LabelIDs: ids,
	}

	_, out, err := r.mutator.Create(ctx, card, e.URL, r.checklists(e, nil))
	st.result.Failed += out.Failed
	if err != nil {
		r.logger.Error("card create failed, entity skipped", zap.Int("entity", e.ID), zap.Error(err))
		st.result.Skipped++
		return
	}
	st.result.Created++
}

// archive closes matched cards whose entity is gone, when they sit in a
// managed list
func (r *Reconciler) archive(ctx context.Context, st *run, cards []model.Card, index map[string]*model.Card, consumed map[string]bool) {
	matched := make(map[string]bool, len(index))
	for _, c := range index {
		matched[c.ID] = true
	}
	for i := range cards {
		card := &cards[i]
		if !matched[card.ID] || consumed[card.ID] || card.Closed {
			continue
		}
		if !st.managedLists[card.ListID] {
			r.logger.Debug("stale card outside managed lists left alone", zap.String("card", card.ID))
			continue
		}
		if err := r.mutator.Archive(ctx, card); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.logger.Error("card archive failed", zap.String("card", card.ID), zap.Error(err))
			st.result.Failed++
			continue
		}
		st.result.Archived++
	}
}
