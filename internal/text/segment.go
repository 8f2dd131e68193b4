package text

import "strings"

// SplitSentences splits free text into trimmed, non-empty sentences.
// A sentence ends at '.', '!' or '?' followed by whitespace. This is a
// deliberate approximation: abbreviations ("Dr. Smith") cause false
// splits. Corrections are sentence-local, so a false split only narrows
// the unit of correction — it never merges or drops text.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				flush()
			}
		}
	}
	flush()

	return sentences
}

// JoinSentences reassembles sentences into article text with single
// spaces, the inverse of SplitSentences up to whitespace.
func JoinSentences(sentences []string) string {
	return strings.Join(sentences, " ")
}
