package text

import (
	"regexp"
	"strings"
)

// numberPattern matches numeric-like tokens: plain or comma-grouped
// numbers, optionally decimal, optionally followed by a magnitude word.
// Bare 4-digit years are a subset of the plain-number alternative.
var numberPattern = regexp.MustCompile(`(?i)\b(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?(?:\s*(?:million|billion|thousand))?\b`)

// yearPattern classifies bare 4-digit years in 1700-2099.
var yearPattern = regexp.MustCompile(`^(?:1[789]|20)\d{2}$`)

// Token is a numeric-like substring with its position in the owning
// sentence.
type Token struct {
	Text  string
	Start int // byte offset
	End   int
	Year  bool
}

// ExtractNumbers returns the numeric tokens of a sentence in occurrence
// order.
func ExtractNumbers(sentence string) []Token {
	locs := numberPattern.FindAllStringIndex(sentence, -1)
	if locs == nil {
		return nil
	}

	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		t := sentence[loc[0]:loc[1]]
		tokens = append(tokens, Token{
			Text:  t,
			Start: loc[0],
			End:   loc[1],
			Year:  yearPattern.MatchString(t),
		})
	}
	return tokens
}

// FirstNumericSpan returns the first numeric or year token of a sentence,
// or nil when the sentence contains none. Used to pick the span marked in
// a model-assisted correction request.
func FirstNumericSpan(sentence string) *Token {
	tokens := ExtractNumbers(sentence)
	if len(tokens) == 0 {
		return nil
	}
	return &tokens[0]
}

// CorrectNumbers aligns numeric tokens positionally between an AI sentence
// and a candidate source sentence and substitutes mismatches.
//
// The rule is deliberately conservative: it applies only when both sides
// carry the same non-zero token count and at least one positional pair
// differs. Mismatched counts mean the alignment is ambiguous and the
// sentence escalates to the model-assisted path instead.
//
// Known limitation: each mismatched AI token is replaced at its first
// occurrence in the sentence, so a value that legitimately repeats later
// can be touched instead of the intended one.
func CorrectNumbers(aiSentence, candidate string) (string, bool) {
	aiTokens := ExtractNumbers(aiSentence)
	srcTokens := ExtractNumbers(candidate)

	if len(aiTokens) == 0 || len(aiTokens) != len(srcTokens) {
		return aiSentence, false
	}

	result := aiSentence
	changed := false
	for i := range aiTokens {
		if aiTokens[i].Text == srcTokens[i].Text {
			continue
		}
		result = strings.Replace(result, aiTokens[i].Text, srcTokens[i].Text, 1)
		changed = true
	}

	return result, changed
}
