// Package summary renders a conversion report for the terminal.
package summary

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/fyrsmithlabs/reflectcsv/internal/converter"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Padding(0, 1)

	numberStyle = cellStyle.
			Align(lipgloss.Right)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// Headers are the table columns.
var Headers = []string{"Reflection", "File", "Rows", "Columns"}

// Render builds the summary text for report.
func Render(report *converter.Report) string {
	title := "Converted " + report.Input
	if report.DryRun {
		title = "Dry run: " + report.Input
	}

	if len(report.Tables) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			warningStyle.Render("No reflections matched; nothing to write."),
		) + "\n"
	}

	rows := make([][]string, 0, len(report.Tables))
	for _, t := range report.Tables {
		rows = append(rows, []string{t.Reflection, t.Path, strconv.Itoa(t.Rows), strconv.Itoa(t.Columns)})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 2:
				return numberStyle
			default:
				return cellStyle
			}
		})

	footer := fmt.Sprintf("%d records, %d tables, %d rows in %s",
		report.Records, len(report.Tables), report.Rows(), report.Duration.Round(time.Millisecond))
	if n := len(report.Skipped); n > 0 {
		footer += fmt.Sprintf(", %d skipped", n)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		tbl.Render(),
		dimStyle.Render(footer),
	) + "\n"
}

// Print writes the summary to w.
func Print(w io.Writer, report *converter.Report) error {
	_, err := io.WriteString(w, Render(report))
	return err
}
