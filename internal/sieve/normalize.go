package sieve

import (
	"regexp"
	"strconv"
	"strings"
)

// numericToken matches number-like tokens in a table row, including
// parenthesized negatives.
var numericToken = regexp.MustCompile(`\(?[\d]{1,3}(?:,\d{3})*(?:\.\d+)?\)?|\(?\d+(?:\.\d+)?\)?`)

// ParseAmount converts a matched numeric string plus an optional unit word
// into whole shillings. Thousand separators and currency labels are
// stripped; "billion"/"million" suffixes scale the value; parenthesized
// numbers are negative (accounting convention). Returns ok=false for
// unparseable input.
func ParseAmount(value, unit string) (int64, bool) {
	s := strings.TrimSpace(value)
	s = strings.TrimPrefix(s, "Kshs.")
	s = strings.TrimPrefix(s, "Kshs")
	s = strings.TrimPrefix(s, "Ksh")
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "billion", "b":
		f *= 1_000_000_000
	case "million", "m":
		f *= 1_000_000
	}

	if negative {
		f = -f
	}
	return int64(f), true
}

// LongestToken returns the longest numeric token in a line. When a table row
// yields several figures, the longest token is the documented heuristic for
// the most likely true value (more digits, fewer truncation artifacts).
func LongestToken(line string) (string, bool) {
	tokens := numericToken.FindAllString(line, -1)
	best := ""
	for _, tok := range tokens {
		clean := strings.Trim(tok, "()")
		if clean == "" || clean == "-" {
			continue
		}
		if len(tok) > len(best) {
			best = tok
		}
	}
	return best, best != ""
}
