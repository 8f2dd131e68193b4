package text

import (
	"sort"

	"github.com/antzucaro/matchr"
)

// Candidate is a source sentence ranked against one AI sentence.
type Candidate struct {
	Text  string
	Score int // 0-100 normalized similarity
	Index int // position in the source sentence sequence
}

// Similarity returns a 0-100 similarity score between two strings,
// derived from the Levenshtein distance normalized by the longer length.
// Identical strings score 100; strings with nothing in common score 0.
func Similarity(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	dist := matchr.Levenshtein(a, b)
	score := 100 - (100*dist+longest/2)/longest
	if score < 0 {
		score = 0
	}
	return score
}

// TopCandidates returns the k source sentences most similar to the AI
// sentence, highest score first. Ties keep source order (earlier wins).
// A pure function: no state is retained between calls.
func TopCandidates(aiSentence string, sourceSentences []string, k int) []Candidate {
	if len(sourceSentences) == 0 || k <= 0 {
		return nil
	}

	candidates := make([]Candidate, len(sourceSentences))
	for i, s := range sourceSentences {
		candidates[i] = Candidate{Text: s, Score: Similarity(aiSentence, s), Index: i}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}

// lcsLen computes the longest common subsequence length of two rune
// slices. Standard O(m×n) DP with a rolling row — sentences are short.
func lcsLen(a, b []rune) int {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return 0
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

// EditRatio returns a 0-1 similarity ratio between two strings based on
// their longest common subsequence: 2*LCS / (len(a)+len(b)). Two empty
// strings are identical (ratio 1).
func EditRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(lcsLen(ra, rb)) / float64(total)
}

// WithinEditBudget reports whether replacement changes at most maxFraction
// of original. This bounds the blast radius of any generative correction:
// a full rewrite is rejected regardless of content.
func WithinEditBudget(original, replacement string, maxFraction float64) bool {
	changed := 1 - EditRatio(original, replacement)
	return changed <= maxFraction
}
