// Package pipeline composes the warehouse connection, the statement catalog
// and the sequential runner into the two programs: Provision drops and
// recreates every table, Load bulk-loads staging and fills the star schema.
package pipeline

import (
	"context"
	"time"

	"dwhload/internal/catalog"
	"dwhload/internal/observability"
	"dwhload/internal/runner"
	"dwhload/internal/ui"
	"dwhload/internal/warehouse"
	"dwhload/pkg/errors"
	"dwhload/pkg/models"
)

// Session is one open warehouse connection
type Session interface {
	runner.Executor
	Connect(ctx context.Context) error
	Close() error
}

// SessionFactory opens sessions for a cluster
type SessionFactory func(cluster models.Cluster, logger *observability.Logger) Session

// PreflightFunc checks the bulk-load sources before COPY runs
type PreflightFunc func(ctx context.Context, locations ...string) error

// Options configure a pipeline run
type Options struct {
	// DryRun prints the statement progress without connecting
	DryRun bool
	UI     *ui.UI
	Logger *observability.Logger
	// Preflight runs before the copy sequence when set
	Preflight PreflightFunc
	// NewSession defaults to a warehouse.Service
	NewSession SessionFactory
}

// DefaultSessionFactory opens a warehouse.Service
func DefaultSessionFactory(cluster models.Cluster, logger *observability.Logger) Session {
	return warehouse.NewService(cluster, logger)
}

// Provision drops every table and creates the schema again
func Provision(ctx context.Context, cfg *models.Config, opts Options) ([]*runner.Report, error) {
	return run(ctx, cfg, opts, catalog.SequenceDrop, catalog.SequenceCreate)
}

// Load copies the raw JSON into staging and then populates the star schema.
// Rows are appended; run Provision first for a clean load.
func Load(ctx context.Context, cfg *models.Config, opts Options) ([]*runner.Report, error) {
	if opts.Preflight != nil && !opts.DryRun {
		opts.section("Checking S3 sources")
		if err := opts.Preflight(ctx, cfg.S3.LogData, cfg.S3.LogJSONPath, cfg.S3.SongData); err != nil {
			return nil, err
		}
	}
	return run(ctx, cfg, opts, catalog.SequenceCopy, catalog.SequenceInsert)
}

func run(ctx context.Context, cfg *models.Config, opts Options, sequences ...catalog.SequenceName) ([]*runner.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = observability.GetDefaultLogger()
	}
	newSession := opts.NewSession
	if newSession == nil {
		newSession = DefaultSessionFactory
	}

	cat, err := catalog.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to build statement catalog")
	}

	var exec runner.Executor = dryRunExecutor{}
	if !opts.DryRun {
		session := newSession(cfg.Cluster, logger)

		start := time.Now()
		if err := session.Connect(ctx); err != nil {
			return nil, err
		}
		defer func() {
			if cerr := session.Close(); cerr != nil {
				logger.WarnWithFields("Failed to close connection", map[string]interface{}{"error": cerr.Error()})
			}
		}()

		logger.InfoWithFields("Connected", map[string]interface{}{
			"host":     cfg.Cluster.Host,
			"dbname":   cfg.Cluster.DBName,
			"duration": time.Since(start).String(),
		})
		exec = session
	}

	reports := make([]*runner.Report, 0, len(sequences))
	for _, name := range sequences {
		stmts, err := cat.Sequence(name)
		if err != nil {
			return reports, errors.Wrap(err, errors.ErrCodeInternal, "Failed to resolve statements")
		}

		opts.section(sequenceTitle(name))
		runOpts := runner.Options{
			Sequence: name,
			DryRun:   opts.DryRun,
			Logger:   logger,
		}
		if opts.UI != nil {
			runOpts.Progress = opts.UI.ProgressFunc(name)
			runOpts.OnResult = opts.UI.StatementResult
		}

		report, err := runner.Run(ctx, exec, stmts, runOpts)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}

		logger.InfoWithFields("Sequence complete", map[string]interface{}{
			"sequence":   string(name),
			"statements": len(report.Results),
			"duration":   report.Duration.String(),
		})
	}

	return reports, nil
}

func (o Options) section(title string) {
	if o.UI != nil {
		o.UI.Section(title)
	}
}

func sequenceTitle(name catalog.SequenceName) string {
	switch name {
	case catalog.SequenceDrop:
		return "Dropping tables"
	case catalog.SequenceCreate:
		return "Creating tables"
	case catalog.SequenceCopy:
		return "Loading staging tables"
	case catalog.SequenceInsert:
		return "Populating star schema"
	}
	return string(name)
}

// dryRunExecutor is never reached since the runner skips dry-run statements
type dryRunExecutor struct{}

func (dryRunExecutor) ExecCommit(context.Context, string) error {
	return errors.New(errors.ErrCodeNotConnected, "Dry run has no connection")
}
