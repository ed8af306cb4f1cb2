package ui

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"dwhload/internal/runner"
)

// Summary renders a per-statement table for the given sequence reports
func (u *UI) Summary(reports ...*runner.Report) {
	if u.Quiet {
		return
	}

	var rows [][]string
	for _, report := range reports {
		if report == nil {
			continue
		}
		for _, r := range report.Results {
			rows = append(rows, []string{
				string(r.Sequence),
				fmt.Sprintf("%d/%d", r.Index, r.Total),
				r.Name,
				r.Table,
				formatDuration(r.Duration),
				status(r),
			})
		}
	}
	if len(rows) == 0 {
		return
	}

	table := tablewriter.NewWriter(u.Out)
	table.SetHeader([]string{"Sequence", "#", "Statement", "Table", "Duration", "Status"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)

	fmt.Fprintln(u.Out)
	table.Render()
}

func status(r runner.Result) string {
	switch {
	case r.Err != nil:
		return color.RedString("FAILED")
	case r.Skipped:
		return color.YellowString("SKIPPED")
	default:
		return color.GreenString("OK")
	}
}

// Totals sums executed statements across reports
func Totals(reports ...*runner.Report) string {
	executed, total := 0, 0
	for _, report := range reports {
		if report == nil {
			continue
		}
		executed += report.Executed()
		total += len(report.Results)
	}
	return strconv.Itoa(executed) + "/" + strconv.Itoa(total)
}
