package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"dwhload/internal/catalog"
	"dwhload/internal/runner"
	apperrors "dwhload/pkg/errors"
)

func init() {
	SetColor(false)
	color.NoColor = true
}

func TestStatementProgress(t *testing.T) {
	var buf bytes.Buffer
	u := NewUI(&buf, false, false)

	progress := u.ProgressFunc(catalog.SequenceDrop)
	progress(1, 8, catalog.Statement{Name: "users_max_ts_drop", Table: "users_max_ts"})
	progress(2, 8, catalog.Statement{Name: "staging_events_drop", Table: "staging_events"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "► Running 1/8 drop table queries (users_max_ts)", lines[0])
	assert.Equal(t, "► Running 2/8 drop table queries (staging_events)", lines[1])
}

func TestQuietSuppressesProgress(t *testing.T) {
	var buf bytes.Buffer
	u := NewUI(&buf, false, true)

	u.StatementProgress(catalog.SequenceCopy, 1, 2, catalog.Statement{Table: "staging_events"})
	u.Info("hello")
	u.Summary(&runner.Report{Results: []runner.Result{{Name: "x"}}})
	assert.Empty(t, buf.String())

	u.ShowError(fmt.Errorf("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestStatementResult(t *testing.T) {
	var buf bytes.Buffer
	u := NewUI(&buf, false, false)

	u.StatementResult(runner.Result{Name: "songs_insert", Duration: 20 * time.Millisecond})
	assert.Empty(t, buf.String(), "successes only shown in verbose mode")

	u.StatementResult(runner.Result{Name: "songs_insert", Err: fmt.Errorf("x")})
	assert.Contains(t, buf.String(), "✗ songs_insert")

	buf.Reset()
	u.Verbose = true
	u.StatementResult(runner.Result{Name: "songs_insert", Duration: 1500 * time.Millisecond})
	assert.Contains(t, buf.String(), "✓ songs_insert 1.5s")
}

func TestShowErrorAppError(t *testing.T) {
	var buf bytes.Buffer
	u := NewUI(&buf, false, false)

	err := apperrors.StatementError("users_insert", "INSERT INTO users SELECT 1", fmt.Errorf(`relation "users" does not exist`)).
		WithContext("statement_index", 2)
	u.ShowError(err)

	out := buf.String()
	assert.Contains(t, out, "ERROR: [DWHE3004] Failed to execute statement users_insert")
	assert.Contains(t, out, `relation "users" does not exist`)
	assert.Contains(t, out, "statement_index:")
	assert.Contains(t, out, "1. Run create-tables before etl")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	u := NewUI(&buf, false, false)

	copyReport := &runner.Report{
		Sequence: catalog.SequenceCopy,
		Results: []runner.Result{
			{Sequence: catalog.SequenceCopy, Index: 1, Total: 2, Name: "staging_events_copy", Table: "staging_events", Duration: 2 * time.Second},
			{Sequence: catalog.SequenceCopy, Index: 2, Total: 2, Name: "staging_songs_copy", Table: "staging_songs", Err: fmt.Errorf("x")},
		},
	}
	u.Summary(copyReport, nil)

	out := buf.String()
	assert.Contains(t, out, "staging_events_copy")
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "2/2")
	assert.Equal(t, "1/2", Totals(copyReport, nil))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "2.5s", formatDuration(2500*time.Millisecond))
	assert.Equal(t, "3m5s", formatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h10m", formatDuration(2*time.Hour+10*time.Minute))
}
