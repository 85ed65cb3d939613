package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/cache"
	"github.com/ppiankov/reliefboard/internal/model"
)

// Provisioner makes sure every list and label a run refers to exists on the
// board. Lists and labels are matched by exact name and never deleted.
type Provisioner struct {
	board    Board
	boardID  string
	registry *cache.Registry
	logger   *zap.Logger

	createdLists  int
	createdLabels int
}

// NewProvisioner creates a provisioner for one board snapshot
func NewProvisioner(board Board, boardID string, registry *cache.Registry, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{board: board, boardID: boardID, registry: registry, logger: logger}
}

// EnsureLists creates the configured lists missing from the board
func (p *Provisioner) EnsureLists(ctx context.Context, lists []model.ListConfig) error {
	for _, l := range lists {
		if _, ok := p.registry.List(l.Name); ok {
			continue
		}
		created, err := p.board.CreateList(ctx, p.boardID, l.Name, float64(l.Position))
		if err != nil {
			return fmt.Errorf("%w: list %q: %w", model.ErrProvisioningFailed, l.Name, err)
		}
		p.registry.AddList(created)
		p.createdLists++
		p.logger.Info("list created", zap.String("list", created.Name), zap.String("id", created.ID))
	}
	return nil
}

// EnsureLabels creates the labels missing from the board. Labels without a
// color are created colorless.
func (p *Provisioner) EnsureLabels(ctx context.Context, labels []model.LabelSpec) error {
	for _, l := range labels {
		if l.Name == "" {
			continue
		}
		if _, ok := p.registry.Label(l.Name); ok {
			continue
		}
		created, err := p.board.CreateLabel(ctx, p.boardID, l.Name, l.Color)
		if err != nil {
			return fmt.Errorf("%w: label %q: %w", model.ErrProvisioningFailed, l.Name, err)
		}
		p.registry.AddLabel(created)
		p.createdLabels++
		p.logger.Info("label created",
			zap.String("label", created.Name),
			zap.String("color", l.Color),
			zap.String("id", created.ID),
		)
	}
	return nil
}

// Created returns the number of lists and labels created so far
func (p *Provisioner) Created() (lists, labels int) {
	return p.createdLists, p.createdLabels
}
