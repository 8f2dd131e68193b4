package rectify

import (
	"context"
	"fmt"
	"os"

	"github.com/pmarkov/rectify/internal/model"
	"github.com/pmarkov/rectify/internal/text"
)

// Pipeline drives the per-sentence rectification loop and aggregates
// diagnostics. Processing is strictly sequential: each sentence is fully
// resolved, including any blocking external request, before the next
// begins. The output always carries exactly as many sentences as the
// segmented input, in the same order.
type Pipeline struct {
	corrector *Corrector
	cfg       model.RectifyConfig
	verbose   bool
}

// NewPipeline creates a pipeline around a corrector.
func NewPipeline(corrector *Corrector, cfg model.RectifyConfig, verbose bool) *Pipeline {
	return &Pipeline{
		corrector: corrector,
		cfg:       cfg,
		verbose:   verbose,
	}
}

// Rectify corrects aiText sentence by sentence against sourceText and
// returns the reassembled article plus diagnostics. Per-sentence decision
// order: deterministic numeric rule, span-marked model correction,
// low-similarity model correction, pass-through. Exactly one path is taken
// per sentence.
func (p *Pipeline) Rectify(ctx context.Context, aiText, sourceText string) (string, model.Diagnostics) {
	aiSentences := text.SplitSentences(aiText)
	sourceSentences := text.SplitSentences(sourceText)

	var diag model.Diagnostics
	out := make([]string, len(aiSentences))

	for i, sentence := range aiSentences {
		decision := p.rectifySentence(ctx, sentence, sourceSentences, &diag)
		out[i] = decision.Text
		if decision.Edited {
			diag.Edits++
		}
		if p.verbose && decision.Edited {
			fmt.Fprintf(os.Stderr, "  [%s] %q -> %q\n", decision.Kind, sentence, decision.Text)
		}
	}

	return text.JoinSentences(out), diag
}

// rectifySentence resolves one sentence. diag is touched only for the
// call counter; the edit counter is owned by the caller.
func (p *Pipeline) rectifySentence(ctx context.Context, sentence string, sourceSentences []string, diag *model.Diagnostics) model.Decision {
	candidates := text.TopCandidates(sentence, sourceSentences, p.cfg.Candidates)

	// Deterministic numeric rule, tried against each candidate in rank
	// order. The first candidate producing a change wins; there is no
	// blending across candidates.
	for _, cand := range candidates {
		if corrected, changed := text.CorrectNumbers(sentence, cand.Text); changed {
			return model.Decision{
				Kind:   model.DecisionDeterministic,
				Text:   corrected,
				Edited: true,
			}
		}
	}

	result := p.corrector.Correct(ctx, sentence, candidates)
	if result.Called {
		diag.LLMCalls++
	}
	if result.Text != sentence {
		return model.Decision{
			Kind:   model.DecisionModelAssisted,
			Text:   result.Text,
			Edited: true,
		}
	}

	return model.Decision{
		Kind: model.DecisionUnchanged,
		Text: sentence,
	}
}
