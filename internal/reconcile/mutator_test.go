package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/reliefboard/internal/model"
	"github.com/ppiankov/reliefboard/internal/worker"
)

func TestMutatorApplyLogsNoop(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	board := newFakeBoard("b")
	card := board.addCard(model.Card{Name: "c"})

	m := NewMutator(board, nil, zap.New(core))
	out := m.Apply(context.Background(), card, CardPlan{})

	assert.False(t, out.Changed)
	assert.Empty(t, board.writes())
	entries := logs.FilterMessage("card unchanged").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestMutatorApplyLogsChangedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	board := newFakeBoard("b")
	card := board.addCard(model.Card{Name: "old"})
	name := "new"

	m := NewMutator(board, nil, zap.New(core))
	out := m.Apply(context.Background(), card, CardPlan{Fields: model.CardFields{Name: &name}})

	assert.True(t, out.Changed)
	assert.Equal(t, []string{"UpdateCard"}, board.writes())
	entries := logs.FilterMessage("card updated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, []interface{}{"name"}, entries[0].ContextMap()["fields"])
}

func TestMutatorIsolatesFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	board := newFakeBoard("b")
	card := board.addCard(model.Card{Name: "c"})
	board.fail["AddLabel"] = func(id string) bool { return id == "l2" }

	m := NewMutator(board, worker.NewBatch(3), zap.New(core))
	out := m.Apply(context.Background(), card, CardPlan{
		AddLabels: []model.Label{{ID: "l1", Name: "a"}, {ID: "l2", Name: "b"}, {ID: "l3", Name: "c"}},
	})

	assert.True(t, out.Changed)
	assert.Equal(t, 1, out.Failed)
	assert.ElementsMatch(t, []string{"l1", "l3"}, board.card(card.ID).LabelIDs)

	failures := logs.FilterMessage("board write failed").All()
	require.Len(t, failures, 1)
	err, ok := failures[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, err, model.ErrLabelMutationFailed.Error())
}

func TestMutatorChecklistCreateFailure(t *testing.T) {
	board := newFakeBoard("b")
	card := board.addCard(model.Card{Name: "c"})
	board.fail["CreateChecklist"] = func(string) bool { return true }

	m := NewMutator(board, nil, nil)
	out := m.Apply(context.Background(), card, CardPlan{Checklists: []ChecklistPlan{{
		Name: "Rivers",
		Add:  []NewItem{{Name: "[a](http://a)", Pos: 1024}, {Name: "[b](http://b)", Pos: 2048}},
	}}})

	assert.False(t, out.Changed)
	assert.Equal(t, 2, out.Failed)
	assert.Zero(t, board.count("AddCheckItem"))
}

func TestMutatorCreateError(t *testing.T) {
	board := newFakeBoard("b")
	board.fail["CreateCard"] = func(string) bool { return true }

	m := NewMutator(board, nil, nil)
	_, out, err := m.Create(context.Background(), model.NewCard{Name: "x"}, "http://reliefweb.int/disaster/x", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrCardMutationFailed))
	assert.True(t, errors.Is(err, errInjected))
	assert.False(t, model.IsFatal(err))
	assert.Equal(t, 1, out.Failed)
	assert.Zero(t, board.count("AddAttachment"))
}
