package ui

import (
	"fmt"
	"time"

	"dwhload/internal/catalog"
	"dwhload/internal/runner"
)

// StatementProgress prints the per-statement counter before execution
func (u *UI) StatementProgress(sequence catalog.SequenceName, index, total int, stmt catalog.Statement) {
	u.Printf("%s Running %d/%d %s table queries %s\n",
		ColorProgress("►"),
		index,
		total,
		sequence,
		ColorDim("("+stmt.Table+")"),
	)
}

// StatementResult prints the outcome of a statement in verbose mode, failures always
func (u *UI) StatementResult(result runner.Result) {
	switch {
	case result.Err != nil:
		u.Printf("  %s %s\n", ColorError("✗"), result.Name)
	case result.Skipped:
		u.VerbosePrintf("  %s %s %s\n", ColorDim("-"), result.Name, ColorDim("(dry run)"))
	default:
		u.VerbosePrintf("  %s %s %s\n", ColorSuccess("✓"), result.Name, ColorDim(formatDuration(result.Duration)))
	}
}

// ProgressFunc adapts StatementProgress to the runner callback
func (u *UI) ProgressFunc(sequence catalog.SequenceName) runner.ProgressFunc {
	return func(index, total int, stmt catalog.Statement) {
		u.StatementProgress(sequence, index, total, stmt)
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, minutes)
}
