// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package conversation

import (
	"slices"
	"strings"
)

// TimestampLayout is the layout history lines use.
const TimestampLayout = "2006-01-02 15:04:05"

// Chronological returns a copy of newest-first records in oldest-first
// order.
func Chronological(newestFirst []Record) []Record {
	ordered := slices.Clone(newestFirst)
	slices.Reverse(ordered)
	return ordered
}

// FormatLine renders a record as "<timestamp> <arrow>: <text>". Line
// breaks inside the text are flattened so one record is one line.
func FormatLine(record Record) string {
	text := strings.Join(strings.Fields(record.Text), " ")
	return record.Timestamp.UTC().Format(TimestampLayout) + " " + record.Direction.Arrow() + ": " + text
}

// FormatHistory renders newest-first records as chronological lines.
func FormatHistory(newestFirst []Record) []string {
	ordered := Chronological(newestFirst)
	lines := make([]string, len(ordered))
	for index, record := range ordered {
		lines[index] = FormatLine(record)
	}
	return lines
}
