// Package pipeline wires one connector run: fetch the upstream collection,
// read the board, reconcile.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/model"
	"github.com/ppiankov/reliefboard/internal/reconcile"
	"github.com/ppiankov/reliefboard/internal/trello"
	"github.com/ppiankov/reliefboard/internal/upstream"
	"github.com/ppiankov/reliefboard/internal/util"
	"github.com/ppiankov/reliefboard/internal/worker"
)

// Source returns the normalized entities of one collection and the tag names
// its entities can carry
type Source interface {
	Fetch(ctx context.Context, kind model.Kind) ([]model.Entity, error)
	Vocabulary(ctx context.Context, kind model.Kind) ([]string, error)
}

// BoardService reads board snapshots and applies writes
type BoardService interface {
	reconcile.Board
	Snapshot(ctx context.Context, boardID string, withChecklists bool) (*model.Board, error)
}

// Pipeline runs connectors against the configured board
type Pipeline struct {
	config *model.Config
	source func(model.ConnectorConfig) Source
	board  BoardService
	logger *zap.Logger
	now    func() time.Time
}

// NewPipeline builds the ReliefWeb and Trello clients from the configuration.
// Both share one per-host rate limiter.
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := worker.NewLimiter(0, 1)
	limiter.SetHostRate(cfg.Upstream.BaseURL, cfg.Upstream.RequestsPerSecond, 1)
	limiter.SetHostRate(cfg.Board.BaseURL, cfg.Board.RequestsPerSecond, cfg.Board.Burst)

	upstreamClient := upstream.NewClient(cfg.Upstream,
		util.NewHTTPClient(cfg.Upstream.Timeout, cfg.Proxy), limiter, logger.Named("reliefweb"))
	boardClient := trello.NewClient(cfg.Board,
		util.NewHTTPClient(cfg.Board.Timeout, cfg.Proxy), limiter, logger.Named("trello"))

	return New(cfg, func(cc model.ConnectorConfig) Source {
		return upstream.NewFetcher(upstreamClient, cc, logger.Named("fetch"))
	}, boardClient, logger)
}

// New creates a pipeline from its parts
func New(cfg *model.Config, source func(model.ConnectorConfig) Source, board BoardService, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		config: cfg,
		source: source,
		board:  board,
		logger: logger,
		now:    time.Now,
	}
}

// RunResult is the outcome of one connector
type RunResult struct {
	Kind     model.Kind
	Result   reconcile.Result
	Err      error
	Duration time.Duration
}

// Run executes one connector. A returned error is fatal for that connector.
func (p *Pipeline) Run(ctx context.Context, kind model.Kind) (reconcile.Result, error) {
	if err := p.config.Validate(kind); err != nil {
		return reconcile.Result{}, fmt.Errorf("config: %w", err)
	}
	cc, err := p.config.Connector(kind)
	if err != nil {
		return reconcile.Result{}, err
	}
	conn, err := reconcile.NewConnector(kind, p.config)
	if err != nil {
		return reconcile.Result{}, err
	}
	log := p.logger.With(zap.String("connector", string(kind)))

	// 1. Fetch upstream collection
	source := p.source(cc)
	entities, err := source.Fetch(ctx, kind)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("fetch %s: %w", kind.Resource(), err)
	}
	log.Info("fetched entities", zap.Int("count", len(entities)))

	// without a vocabulary, tags no entity carries any more stay on their
	// cards until the next run
	vocabulary, err := source.Vocabulary(ctx, kind)
	if err != nil {
		log.Warn("tag vocabulary unavailable", zap.Error(err))
		vocabulary = nil
	}

	// 2. Read board snapshot
	snapshot, err := p.board.Snapshot(ctx, cc.BoardID, conn.WithChecklists())
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("read board: %w", err)
	}

	// 3. Provision, match, reconcile, archive
	r := reconcile.New(conn, p.board, reconcile.Options{
		Concurrency:   p.config.Board.Concurrency,
		Logger:        p.logger,
		Now:           p.now,
		TagVocabulary: vocabulary,
	})
	res, err := r.Run(ctx, snapshot, entities)
	if err != nil {
		return res, fmt.Errorf("reconcile %s: %w", kind.Resource(), err)
	}
	return res, nil
}

// RunAll executes connectors one after the other. A failing connector does
// not stop the others; all errors are combined.
func (p *Pipeline) RunAll(ctx context.Context, kinds []model.Kind) ([]RunResult, error) {
	results := make([]RunResult, 0, len(kinds))
	var errs error
	for _, kind := range kinds {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		start := time.Now()
		res, err := p.Run(ctx, kind)
		results = append(results, RunResult{Kind: kind, Result: res, Err: err, Duration: time.Since(start)})
		if err != nil {
			p.logger.Error("connector failed", zap.String("connector", string(kind)), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return results, errs
}

// AllKinds is the order connectors run in for "sync all"
var AllKinds = []model.Kind{model.KindCountry, model.KindDisaster, model.KindTopic}
