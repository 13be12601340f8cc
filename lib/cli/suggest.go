// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestionDistance is the largest edit distance still offered as
// a "did you mean". Three covers a transposition plus a dropped letter.
const maxSuggestionDistance = 3

// closest returns the candidate nearest to input by edit distance, if
// any is within maxSuggestionDistance. Ties go to the earlier
// candidate.
func closest(input string, candidates []string) (string, bool) {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range candidates {
		if distance := editDistance(input, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best, best != ""
}

// closestFlag finds the first flag in args that flagSet does not
// define and suggests the nearest defined flag, spelled with the dash
// prefix it takes.
func closestFlag(args []string, flagSet *pflag.FlagSet) (string, bool) {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if flagSet.Lookup(name) != nil || (len(name) == 1 && flagSet.ShorthandLookup(name) != nil) {
			continue
		}

		var names []string
		flagSet.VisitAll(func(flag *pflag.Flag) { names = append(names, flag.Name) })
		suggestion, ok := closest(name, names)
		if !ok {
			return "", false
		}
		if len(suggestion) == 1 {
			return "-" + suggestion, true
		}
		return "--" + suggestion, true
	}
	return "", false
}

// editDistance is the Levenshtein distance between a and b in runes.
func editDistance(a, b string) int {
	source, target := []rune(a), []rune(b)
	if len(source) < len(target) {
		source, target = target, source
	}

	// row[j] holds the distance between the current prefix of source
	// and target[:j].
	row := make([]int, len(target)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(source); i++ {
		diagonal := row[0]
		row[0] = i
		for j := 1; j <= len(target); j++ {
			above := row[j]
			substitution := diagonal
			if source[i-1] != target[j-1] {
				substitution++
			}
			row[j] = min(above+1, row[j-1]+1, substitution)
			diagonal = above
		}
	}
	return row[len(target)]
}
