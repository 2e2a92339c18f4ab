// SPDX-License-Identifier: MIT
// Package tui renders methods, parameter grids and run reports for the
// terminal, and hosts the interactive method browser.
package tui

import (
	"fmt"
	"strconv"
	"time"

	"sigbench/internal/dispatch"
	"sigbench/internal/method"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E05252"))

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// sweepSize describes how many parameter sets a method sweeps.
func sweepSize(grid []method.Params) string {
	if len(grid) == 1 && grid[0] == nil {
		return "default"
	}
	return strconv.Itoa(len(grid))
}

// MethodTable renders one row per method with its task and sweep size.
func MethodTable(methods []method.Method) string {
	t := newTable("ID", "TASK", "SWEEP")
	for _, m := range methods {
		t.Row(m.ID(), m.Task().String(), sweepSize(dispatch.Parameters(m)))
	}
	return t.String()
}

// ParamsTable renders the parameter sets m is swept over, in order.
func ParamsTable(m method.Method) string {
	t := newTable("#", "PARAMS")
	for i, p := range dispatch.Parameters(m) {
		t.Row(strconv.Itoa(i), p.String())
	}
	return titleStyle.Render(m.ID()) + "\n" + t.String()
}

// output summarises what an outcome produced.
func output(o dispatch.Outcome) string {
	switch {
	case o.Err != nil:
		return "-"
	case o.Result.Signal != nil:
		return fmt.Sprintf("%d samples", o.Result.Signal.Len())
	default:
		return fmt.Sprintf("%d events", len(o.Result.Events))
	}
}

// SummaryTable renders every outcome of a run followed by a totals line.
func SummaryTable(r *dispatch.Report) string {
	t := newTable("METHOD", "SIGNAL", "PARAMS", "STATUS", "ELAPSED", "OUTPUT")
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == 3 && row < len(r.Outcomes) && r.Outcomes[row].Err != nil {
			return cellStyle.Inherit(failStyle)
		}
		return cellStyle
	})
	for _, o := range r.Outcomes {
		t.Row(o.MethodID, o.Signal, o.Params.String(), o.Status(),
			o.Elapsed.Round(time.Microsecond).String(), output(o))
	}

	totals := fmt.Sprintf("run %s: %d ok, %d failed in %s",
		r.RunID, r.Succeeded(), r.Failed(), r.Elapsed.Round(time.Millisecond))
	return t.String() + "\n" + infoStyle.Render(totals)
}
