package runner

import (
	"context"
	"time"

	"dwhload/internal/catalog"
	"dwhload/internal/observability"
	"dwhload/pkg/errors"
)

// Executor runs one statement and commits it before returning
type Executor interface {
	ExecCommit(ctx context.Context, query string) error
}

// ProgressFunc is called before each statement with its 1-based index
type ProgressFunc func(index, total int, stmt catalog.Statement)

// ResultFunc is called after each statement, successful or not
type ResultFunc func(result Result)

// Options control a single sequence run
type Options struct {
	// Sequence labels log lines and errors, e.g. "drop"
	Sequence catalog.SequenceName
	Progress ProgressFunc
	OnResult ResultFunc
	// DryRun reports every statement without executing it
	DryRun bool
	Logger *observability.Logger
}

// Result records the outcome of one statement
type Result struct {
	Sequence catalog.SequenceName
	Index    int
	Total    int
	Name     string
	Table    string
	Duration time.Duration
	Skipped  bool
	Err      error
}

// Report collects the results of a sequence run
type Report struct {
	Sequence catalog.SequenceName
	Results  []Result
	Duration time.Duration
}

// Executed counts the statements that actually ran and committed
func (r *Report) Executed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Skipped && res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the failing result, if any
func (r *Report) Failed() *Result {
	for i := range r.Results {
		if r.Results[i].Err != nil {
			return &r.Results[i]
		}
	}
	return nil
}

// Run executes stmts in order through exec. The first failure stops the run;
// statements before it stay committed.
func Run(ctx context.Context, exec Executor, stmts []catalog.Statement, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = observability.GetDefaultLogger()
	}
	logger = logger.WithField("sequence", string(opts.Sequence))

	report := &Report{
		Sequence: opts.Sequence,
		Results:  make([]Result, 0, len(stmts)),
	}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	total := len(stmts)
	for i, stmt := range stmts {
		index := i + 1

		if err := ctx.Err(); err != nil {
			return report, errors.AbortedError(err).
				WithContext("sequence", string(opts.Sequence)).
				WithContext("completed", i).
				WithContext("total", total)
		}

		if opts.Progress != nil {
			opts.Progress(index, total, stmt)
		}

		result := Result{
			Sequence: opts.Sequence,
			Index:    index,
			Total:    total,
			Name:     stmt.Name,
			Table:    stmt.Table,
		}

		if opts.DryRun {
			result.Skipped = true
			logger.DebugWithFields("Skipping statement (dry run)", map[string]interface{}{"statement": stmt.Name})
		} else {
			stmtStart := time.Now()
			err := exec.ExecCommit(ctx, stmt.SQL)
			result.Duration = time.Since(stmtStart)

			switch {
			case err != nil && ctx.Err() != nil:
				result.Err = errors.AbortedError(err).
					WithContext("sequence", string(opts.Sequence)).
					WithContext("statement", stmt.Name).
					WithContext("statement_index", index).
					WithContext("total_statements", total)
			case err != nil:
				result.Err = errors.StatementError(stmt.Name, stmt.SQL, err).
					WithContext("sequence", string(opts.Sequence)).
					WithContext("statement_index", index).
					WithContext("total_statements", total)
			}
		}

		report.Results = append(report.Results, result)
		if opts.OnResult != nil {
			opts.OnResult(result)
		}

		if result.Err != nil {
			logger.ErrorWithFields("Statement failed", map[string]interface{}{
				"statement": stmt.Name,
				"index":     index,
				"total":     total,
				"error":     result.Err.Error(),
			})
			return report, result.Err
		}

		logger.DebugWithFields("Statement committed", map[string]interface{}{
			"statement": stmt.Name,
			"index":     index,
			"total":     total,
			"duration":  result.Duration.String(),
		})
	}

	return report, nil
}
