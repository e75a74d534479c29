package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skud-compare-api/internal/config"
	"skud-compare-api/internal/metrics"
	"skud-compare-api/internal/reconcile"
	"skud-compare-api/internal/shift"
	"skud-compare-api/internal/skud"
	"skud-compare-api/internal/tabell"
)

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skud-compare",
		Short:         "Reconcile tabell timesheets against SKUD punch exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newProjectsCmd())
	return root
}

// runtime bundles the wired components a command needs.
type runtime struct {
	cfg      config.Config
	client   *tabell.Client
	pipeline *reconcile.Pipeline
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
	cleanup  func()
}

// newRuntime loads configuration and wires the pipeline. sheetURL, when
// non-empty, overrides the configured spreadsheet.
func newRuntime(sheetURL string) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if sheetURL != "" {
		id, gid, err := config.ParseSheetURL(sheetURL)
		if err != nil {
			return nil, err
		}
		cfg.SpreadsheetID = id
		cfg.GID = gid
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("no tabell sheet configured: set GOOGLE_SHEET_URL or pass --sheet-url")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	log := logger.Sugar()

	client := tabell.NewClient(tabell.ClientConfig{
		SpreadsheetID: cfg.SpreadsheetID,
		GID:           cfg.GID,
		Timeout:       cfg.FetchTimeout,
	}, log)
	m := metrics.New()
	pipeline := reconcile.New(
		skud.NewReader(log),
		shift.NewDetector(shift.DefaultWindows(), log),
		client,
		m,
		log,
	)
	return &runtime{
		cfg:      cfg,
		client:   client,
		pipeline: pipeline,
		metrics:  m,
		log:      log,
		cleanup:  func() { _ = logger.Sync() },
	}, nil
}

// parseRange validates the inclusive date range flags.
func parseRange(fromRaw, toRaw string) (from, to time.Time, err error) {
	from, err = time.Parse(time.DateOnly, fromRaw)
	if err != nil {
		return from, to, fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
	}
	to, err = time.Parse(time.DateOnly, toRaw)
	if err != nil {
		return from, to, fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
	}
	if from.After(to) {
		return from, to, fmt.Errorf("--from must not be after --to")
	}
	return from, to, nil
}
