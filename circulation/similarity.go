package circulation

import (
	"strings"
)

// LevenshteinDistance returns the classic edit distance between a and b:
// single-character inserts, deletes, and substitutions, each at cost 1.
// The full dynamic-programming table is computed with no early exit; inputs
// are titles of practically tens of characters, so this stays cheap.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}

	if len(rb) == 0 {
		return len(ra)
	}

	table := make([][]int, len(ra)+1)
	for i := range table {
		table[i] = make([]int, len(rb)+1)
		table[i][0] = i
	}

	for j := 0; j <= len(rb); j++ {
		table[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			deletion := table[i-1][j] + 1
			insertion := table[i][j-1] + 1
			substitution := table[i-1][j-1] + cost

			table[i][j] = min(deletion, insertion, substitution)
		}
	}

	return table[len(ra)][len(rb)]
}

// Similarity returns a normalized edit-distance score in [0, 1]:
// (maxLen - distance) / maxLen, computed on lower-cased inputs.
// Two empty strings are identical and score 1.
func Similarity(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	maxLen := max(len([]rune(la)), len([]rune(lb)))
	if maxLen == 0 {
		return 1.0
	}

	distance := LevenshteinDistance(la, lb)

	return float64(maxLen-distance) / float64(maxLen)
}
