package circulation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfwise/circulation-go/circulation"
)

func Test_LevenshteinDistance_ComputesEditDistance(t *testing.T) {
	testCases := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "identical strings", a: "gatsby", b: "gatsby", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "one empty", a: "", b: "abc", want: 3},
		{name: "kitten to sitting", a: "kitten", b: "sitting", want: 3},
		{name: "single substitution", a: "book", b: "look", want: 1},
		{name: "single insertion", a: "cat", b: "cart", want: 1},
		{name: "symmetric", a: "sitting", b: "kitten", want: 3},
		{name: "multibyte runes", a: "café", b: "cafe", want: 1},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, circulation.LevenshteinDistance(testCase.a, testCase.b))
		})
	}
}

func Test_Similarity_ReturnsOne_ForIdenticalStrings(t *testing.T) {
	assert.Equal(t, 1.0, circulation.Similarity("The Great Gatsby", "The Great Gatsby"))
}

func Test_Similarity_IgnoresCase(t *testing.T) {
	assert.Equal(t, 1.0, circulation.Similarity("The Great Gatsby", "the great gatsby"))
}

func Test_Similarity_ReturnsOne_WhenBothStringsAreEmpty(t *testing.T) {
	assert.Equal(t, 1.0, circulation.Similarity("", ""))
}

func Test_Similarity_ReturnsZero_WhenOneStringIsEmpty(t *testing.T) {
	assert.Equal(t, 0.0, circulation.Similarity("", "gatsby"))
}

func Test_Similarity_ScoresCloseTitlesAboveThreshold(t *testing.T) {
	// "The Great Gatsby" vs "The Great Gatsby: A Novel" shares a long prefix;
	// the score must clear the 0.6 classifier threshold.
	score := circulation.Similarity("The Great Gatsby", "The Great Gatsby: A Novel")

	assert.Greater(t, score, 0.6)
}

func Test_Similarity_ScoresUnrelatedTitlesBelowThreshold(t *testing.T) {
	score := circulation.Similarity("The Great Gatsby", "Moby-Dick")

	assert.Less(t, score, 0.6)
}

func Test_Similarity_IsSymmetric(t *testing.T) {
	assert.Equal(t,
		circulation.Similarity("Brave New World", "Brave New Word"),
		circulation.Similarity("Brave New Word", "Brave New World"),
	)
}
