package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/tazhate/leaderflow/internal/agenda"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	imminentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
)

type upcomingRow struct {
	Kind        agenda.Kind `json:"kind" yaml:"kind"`
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Date        time.Time   `json:"date" yaml:"date"`
	MinutesLeft int         `json:"minutesLeft" yaml:"minutes_left"`
	Imminent    bool        `json:"imminent" yaml:"imminent"`
}

func upcomingRows(items []agenda.Item, now time.Time, window time.Duration) []upcomingRow {
	rows := make([]upcomingRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, upcomingRow{
			Kind:        it.Kind,
			ID:          it.ID(),
			Title:       it.Title(),
			Date:        it.Date.In(now.Location()),
			MinutesLeft: agenda.MinutesLeft(it, now),
			Imminent:    agenda.HasImminent([]agenda.Item{it}, now, window),
		})
	}
	return rows
}

// writeStructured encodes v as yaml or json. ok is false for the table format.
func writeStructured(w io.Writer, format string, v any) (ok bool, err error) {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(v)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputTable, "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q (want table, yaml or json)", format)
	}
}

func renderUpcoming(w io.Writer, rows []upcomingRow) {
	fmt.Fprintln(w, titleStyle.Render("Sắp diễn ra (24 giờ)"))
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Không có việc nào."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-10s %-16s %-8s %s", "LOẠI", "THỜI GIAN", "CÒN", "TIÊU ĐỀ")))
	for _, r := range rows {
		line := fmt.Sprintf("%-10s %-16s %-8s %s",
			r.Kind,
			r.Date.Format("02/01 15:04"),
			fmt.Sprintf("%dp", r.MinutesLeft),
			r.Title,
		)
		if r.Imminent {
			line = imminentStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func renderSection(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, headerStyle.Render(title))
	fmt.Fprintln(w, "  "+strings.Join(lines, "\n  "))
}
