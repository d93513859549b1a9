package input

import (
	"errors"
	"strings"
	"unicode"
)

// ErrGibberish is returned by ValidateMeaningful for random-looking input.
var ErrGibberish = errors.New("Please provide a meaningful response. Your input appears to be random characters.")

var keyboardRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

const consonants = "bcdfghjklmnpqrstvwxyz"

// IsGibberish reports whether text looks like keyboard mashing rather than
// an answer. It is a pure heuristic; any single rule matching is enough.
func IsGibberish(text string) bool {
	trimmed := []rune(strings.TrimSpace(text))
	n := len(trimmed)
	if n < 3 {
		return true
	}

	lower := []rune(strings.ToLower(string(trimmed)))

	ratio := float64(countVowels(lower)) / float64(n)
	if n < 10 && ratio < 0.10 {
		return true
	}
	if n >= 10 && ratio < 0.08 {
		return true
	}

	if hasRepeatedUnit(lower) {
		return true
	}

	compact := stripSpaces(lower)
	for _, row := range keyboardRows {
		if len(compact) > 0 && allIn(compact, row) {
			return true
		}
	}
	if raw := stripSpaces(trimmed); len(raw) > 1 && singleChar(raw) {
		return true
	}

	return mostlyConsonantClusters(string(trimmed))
}

// ValidateMeaningful returns ErrGibberish when IsGibberish matches.
func ValidateMeaningful(text string) error {
	if IsGibberish(text) {
		return ErrGibberish
	}
	return nil
}

func countVowels(rs []rune) int {
	n := 0
	for _, r := range rs {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			n++
		}
	}
	return n
}

// hasRepeatedUnit reports whether some substring of two or more characters
// occurs at least three times back to back. Units never span a line break.
//
// For a fixed unit length L, s[i:i+3L] is three copies of one unit exactly
// when s[j] == s[j+L] for every j in [i, i+2L), so a run of 2L consecutive
// matches is the signal.
func hasRepeatedUnit(s []rune) bool {
	n := len(s)
	for l := 2; 3*l <= n; l++ {
		run := 0
		for j := 0; j+l < n; j++ {
			if s[j] == s[j+l] && !isLineBreak(s[j]) {
				run++
				if run >= 2*l {
					return true
				}
			} else {
				run = 0
			}
		}
	}
	return false
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func stripSpaces(rs []rune) []rune {
	out := make([]rune, 0, len(rs))
	for _, r := range rs {
		if !isSpace(r) {
			out = append(out, r)
		}
	}
	return out
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

func allIn(rs []rune, set string) bool {
	for _, r := range rs {
		if !strings.ContainsRune(set, r) {
			return false
		}
	}
	return true
}

func singleChar(rs []rune) bool {
	for _, r := range rs[1:] {
		if r != rs[0] {
			return false
		}
	}
	return true
}

// mostlyConsonantClusters looks at words of four or more characters and
// flags the text when more than half contain four consonants in a row.
func mostlyConsonantClusters(text string) bool {
	var longer, clustered int
	for _, word := range strings.FieldsFunc(text, isSpace) {
		w := []rune(strings.ToLower(word))
		if len(w) < 4 {
			continue
		}
		longer++
		if hasConsonantRun(w, 4) {
			clustered++
		}
	}
	if longer == 0 {
		return false
	}
	return float64(clustered)/float64(longer) > 0.5
}

func hasConsonantRun(w []rune, size int) bool {
	run := 0
	for _, r := range w {
		if strings.ContainsRune(consonants, r) {
			run++
			if run >= size {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
