package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/reliefboard/internal/model"
)

type stubSource struct {
	entities   map[model.Kind][]model.Entity
	err        map[model.Kind]error
	vocabulary []string
	vocabErr   error
}

func (s *stubSource) Vocabulary(context.Context, model.Kind) ([]string, error) {
	return s.vocabulary, s.vocabErr
}

func (s *stubSource) Fetch(_ context.Context, kind model.Kind) ([]model.Entity, error) {
	if err := s.err[kind]; err != nil {
		return nil, err
	}
	return s.entities[kind], nil
}

// stubBoard hands out ids for created objects and counts writes
type stubBoard struct {
	mu        sync.Mutex
	n         int
	writes    map[string]int
	snapshots []string
	checklist []bool
	snapErr   error
}

func newStubBoard() *stubBoard {
	return &stubBoard{writes: map[string]int{}}
}

func (b *stubBoard) write(method string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.n++
	b.writes[method]++
	return fmt.Sprintf("id%d", b.n)
}

func (b *stubBoard) Snapshot(_ context.Context, boardID string, withChecklists bool) (*model.Board, error) {
	b.snapshots = append(b.snapshots, boardID)
	b.checklist = append(b.checklist, withChecklists)
	if b.snapErr != nil {
		return nil, b.snapErr
	}
	return &model.Board{ID: boardID}, nil
}

func (b *stubBoard) CreateList(_ context.Context, _, name string, pos float64) (model.List, error) {
	return model.List{ID: b.write("CreateList"), Name: name, Pos: pos}, nil
}

func (b *stubBoard) CreateLabel(_ context.Context, _, name, color string) (model.Label, error) {
	return model.Label{ID: b.write("CreateLabel"), Name: name, Color: color}, nil
}

func (b *stubBoard) CreateCard(_ context.Context, c model.NewCard) (model.Card, error) {
	return model.Card{ID: b.write("CreateCard"), Name: c.Name}, nil
}

func (b *stubBoard) UpdateCard(context.Context, string, model.CardFields) error {
	b.write("UpdateCard")
	return nil
}

func (b *stubBoard) AddLabel(context.Context, string, string) error {
	b.write("AddLabel")
	return nil
}

func (b *stubBoard) RemoveLabel(context.Context, string, string) error {
	b.write("RemoveLabel")
	return nil
}

func (b *stubBoard) AddAttachment(context.Context, string, string) error {
	b.write("AddAttachment")
	return nil
}

func (b *stubBoard) CreateChecklist(_ context.Context, cardID, name string) (model.Checklist, error) {
	return model.Checklist{ID: b.write("CreateChecklist"), Name: name, CardID: cardID}, nil
}

func (b *stubBoard) AddCheckItem(_ context.Context, _, name string, pos float64) (model.CheckItem, error) {
	return model.CheckItem{ID: b.write("AddCheckItem"), Name: name, Pos: pos}, nil
}

func (b *stubBoard) UpdateCheckItem(context.Context, string, string, string, float64) error {
	b.write("UpdateCheckItem")
	return nil
}

func (b *stubBoard) DeleteCheckItem(context.Context, string, string) error {
	b.write("DeleteCheckItem")
	return nil
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Board.Key = "key"
	cfg.Board.Token = "token"
	cfg.Connectors.Countries.BoardID = "countries"
	cfg.Connectors.Disasters.BoardID = "disasters"
	cfg.Connectors.Topics.BoardID = "topics"
	return cfg
}

func entity(t *testing.T, kind model.Kind, id int, path string) model.Entity {
	t.Helper()
	e, err := model.NewEntity(kind, id, fmt.Sprintf("%s %d", kind, id), "https://reliefweb.int/"+path)
	require.NoError(t, err)
	return e
}

func newTestPipeline(cfg *model.Config, src *stubSource, board *stubBoard) *Pipeline {
	return New(cfg, func(model.ConnectorConfig) Source { return src }, board, nil)
}

func TestRunCreatesCards(t *testing.T) {
	src := &stubSource{entities: map[model.Kind][]model.Entity{
		model.KindDisaster: {
			entity(t, model.KindDisaster, 2, "disaster/b"),
			entity(t, model.KindDisaster, 1, "disaster/a"),
		},
	}}
	board := newStubBoard()

	res, err := newTestPipeline(testConfig(), src, board).Run(context.Background(), model.KindDisaster)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 2, board.writes["CreateCard"])
	assert.Equal(t, 2, board.writes["AddAttachment"])
	assert.Equal(t, []string{"disasters"}, board.snapshots)
	assert.Equal(t, []bool{false}, board.checklist)
}

func TestRunTopicsReadsChecklists(t *testing.T) {
	src := &stubSource{entities: map[model.Kind][]model.Entity{
		model.KindTopic: {entity(t, model.KindTopic, 1, "topics/wash")},
	}}
	board := newStubBoard()

	_, err := newTestPipeline(testConfig(), src, board).Run(context.Background(), model.KindTopic)
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, board.checklist)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Board.Token = ""
	board := newStubBoard()

	_, err := newTestPipeline(cfg, &stubSource{}, board).Run(context.Background(), model.KindCountry)
	require.Error(t, err)
	assert.Empty(t, board.snapshots)
}

func TestRunFatalErrors(t *testing.T) {
	t.Run("upstream", func(t *testing.T) {
		src := &stubSource{err: map[model.Kind]error{
			model.KindCountry: fmt.Errorf("%w: empty response", model.ErrUpstreamUnavailable),
		}}
		board := newStubBoard()

		_, err := newTestPipeline(testConfig(), src, board).Run(context.Background(), model.KindCountry)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrUpstreamUnavailable))
		assert.True(t, model.IsFatal(err))
		assert.Empty(t, board.snapshots, "board is not read when the fetch fails")
	})

	t.Run("board", func(t *testing.T) {
		board := newStubBoard()
		board.snapErr = fmt.Errorf("%w: 401", model.ErrBoardUnavailable)

		_, err := newTestPipeline(testConfig(), &stubSource{}, board).Run(context.Background(), model.KindCountry)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrBoardUnavailable))
		assert.Zero(t, board.n)
	})
}

func TestRunAllContinuesAfterFailure(t *testing.T) {
	src := &stubSource{
		entities: map[model.Kind][]model.Entity{
			model.KindCountry: {entity(t, model.KindCountry, 1, "country/ken")},
			model.KindTopic:   {entity(t, model.KindTopic, 1, "topics/wash")},
		},
		err: map[model.Kind]error{
			model.KindDisaster: fmt.Errorf("%w: status 503", model.ErrUpstreamUnavailable),
		},
	}
	board := newStubBoard()

	results, err := newTestPipeline(testConfig(), src, board).RunAll(context.Background(), AllKinds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUpstreamUnavailable))

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 1, results[0].Result.Created)
	assert.Equal(t, 1, results[2].Result.Created)
	assert.Equal(t, []string{"countries", "topics"}, board.snapshots)
}

func TestRunVocabularyFailureIsNotFatal(t *testing.T) {
	src := &stubSource{
		entities: map[model.Kind][]model.Entity{
			model.KindDisaster: {entity(t, model.KindDisaster, 1, "disaster/a")},
		},
		vocabErr: fmt.Errorf("%w: status 502", model.ErrUpstreamUnavailable),
	}
	board := newStubBoard()

	res, err := newTestPipeline(testConfig(), src, board).Run(context.Background(), model.KindDisaster)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
}
