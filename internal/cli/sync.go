package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/model"
	"github.com/ppiankov/reliefboard/internal/pipeline"
)

var (
	syncTimeout     time.Duration
	syncConcurrency int
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync <countries|disasters|topics|all>",
	Short: "Reconcile one connector (or all of them) onto its board",
	Long: `Sync runs one reconciliation pass:
- Fetch the ReliefWeb collection
- Read the board lists, labels and cards
- Create missing lists and labels
- Create, update, revive or archive cards so the board matches

"all" runs countries, disasters and topics in that order; a failing
connector does not stop the others, but the command exits non-zero.

Example:
  reliefboard sync disasters
  reliefboard sync all --verbose
  reliefboard sync topics --concurrency 4`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"countries", "disasters", "topics", "all"},
	RunE:      runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 30*time.Minute, "total timeout for the run")
	syncCmd.Flags().IntVar(&syncConcurrency, "concurrency", 0, "parallel label and checklist writes per card (default: board.concurrency)")
}

func parseKinds(arg string) ([]model.Kind, error) {
	if arg == "all" {
		return pipeline.AllKinds, nil
	}
	kind, err := model.ParseKind(arg)
	if err != nil {
		return nil, err
	}
	return []model.Kind{kind}, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if syncConcurrency > 0 {
		cfg.Board.Concurrency = syncConcurrency
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Reliefboard Sync\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Connectors:   %v\n", kinds)
	fmt.Fprintf(os.Stderr, "  Upstream:     %s\n", cfg.Upstream.BaseURL)
	fmt.Fprintf(os.Stderr, "  Board API:    %s\n", cfg.Board.BaseURL)
	fmt.Fprintf(os.Stderr, "  Concurrency:  %d\n", max(cfg.Board.Concurrency, 1))
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", syncTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(cfg, logger)
	results, runErr := p.RunAll(ctx, kinds)

	printSummary(results)
	if runErr != nil {
		logger.Error("sync failed", zap.Error(runErr))
	}
	return runErr
}

func printSummary(results []pipeline.RunResult) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Sync Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ %-10s %v\n", r.Kind.Resource(), r.Err)
			continue
		}
		res := r.Result
		fmt.Fprintf(os.Stderr, "✓ %-10s %d entities in %v\n", r.Kind.Resource(), res.Entities, r.Duration.Round(time.Millisecond))
		fmt.Fprintf(os.Stderr, "    Created:    %d\n", res.Created)
		fmt.Fprintf(os.Stderr, "    Updated:    %d\n", res.Updated)
		fmt.Fprintf(os.Stderr, "    Unchanged:  %d\n", res.Unchanged)
		fmt.Fprintf(os.Stderr, "    Archived:   %d\n", res.Archived)
		if res.Skipped > 0 || res.Failed > 0 {
			fmt.Fprintf(os.Stderr, "    Skipped:    %d\n", res.Skipped)
			fmt.Fprintf(os.Stderr, "    Failed:     %d (retried next run)\n", res.Failed)
		}
		if res.ListsCreated > 0 || res.LabelsCreated > 0 {
			fmt.Fprintf(os.Stderr, "    Provisioned: %d lists, %d labels\n", res.ListsCreated, res.LabelsCreated)
		}
	}
	fmt.Fprintf(os.Stderr, "\n")
}
