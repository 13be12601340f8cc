// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/ahmed5528/masa-bot/lib/conversation"
)

// nameWidth bounds the display-name column so one long name does not
// stretch the table past the terminal.
const nameWidth = 24

// styles renders command output. Colors follow the terminal's detected
// profile; NO_COLOR, a pipe, or --no-color yields plain text.
type styles struct {
	renderer *lipgloss.Renderer
	header   lipgloss.Style
	serial   lipgloss.Style
	faint    lipgloss.Style
	warning  lipgloss.Style
	border   lipgloss.Style
	toUser   lipgloss.Style
	toStaff  lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	renderer := lipgloss.NewRenderer(w)
	profile := termenv.NewOutput(w).EnvColorProfile()
	if noColor {
		profile = termenv.Ascii
	}
	renderer.SetColorProfile(profile)

	return styles{
		renderer: renderer,
		header:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		serial:   renderer.NewStyle().Foreground(lipgloss.Color("81")),
		faint:    renderer.NewStyle().Foreground(lipgloss.Color("245")),
		warning:  renderer.NewStyle().Foreground(lipgloss.Color("214")),
		border:   renderer.NewStyle().Foreground(lipgloss.Color("240")),
		toUser:   renderer.NewStyle().Foreground(lipgloss.Color("114")),
		toStaff:  renderer.NewStyle().Foreground(lipgloss.Color("75")),
	}
}

// table renders rows under headers. Column 0 holds serials.
func (s styles) table(headers []string, rows [][]string) string {
	cell := s.renderer.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, column int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.header.Padding(0, 1)
			case column == 0:
				return s.serial.Padding(0, 1)
			default:
				return cell
			}
		}).
		String()
}

// historyLine styles one formatted history line by direction.
func (s styles) historyLine(record conversation.Record) string {
	line := conversation.FormatLine(record)
	if record.Direction == conversation.StaffToUser {
		return s.toUser.Render(line)
	}
	return s.toStaff.Render(line)
}

// truncate shortens text to width terminal cells.
func truncate(text string, width int) string {
	return ansi.Truncate(text, width, "…")
}

// formatTime renders t like history lines do; the zero time is "-".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(conversation.TimestampLayout)
}
