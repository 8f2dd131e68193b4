// Package rectify implements the surgical rectification pipeline: each
// AI-generated sentence is aligned against the trusted source article and
// corrected with the smallest possible edit, first by a deterministic
// numeric-substitution rule and then, when that abstains, by a tightly
// guarded model-assisted path whose output is bounded by an edit-magnitude
// validator.
package rectify

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/time/rate"

	"github.com/pmarkov/rectify/internal/llm"
	"github.com/pmarkov/rectify/internal/model"
	"github.com/pmarkov/rectify/internal/text"
)

// Span markers used in correction prompts. They appear only in the
// prompt; the model is instructed to return the sentence without them.
const (
	MarkerOpen  = "<<"
	MarkerClose = ">>"
)

// Corrector is the model-assisted surgical corrector. It marks a single
// suspicious span, issues a constrained correction request, and accepts
// the response only when it stays within the configured edit budget.
//
// A nil provider disables the model-assisted path entirely; sentences the
// deterministic rule cannot resolve then pass through unchanged.
type Corrector struct {
	provider llm.Provider
	limiter  *rate.Limiter
	cfg      model.RectifyConfig
	verbose  bool
}

// NewCorrector creates a Corrector. limiter may be nil (no throttling).
func NewCorrector(provider llm.Provider, limiter *rate.Limiter, cfg model.RectifyConfig, verbose bool) *Corrector {
	return &Corrector{
		provider: provider,
		limiter:  limiter,
		cfg:      cfg,
		verbose:  verbose,
	}
}

// Result is the outcome of one model-assisted correction attempt.
type Result struct {
	// Text is the final sentence: the accepted correction, or the
	// original when no request was made or the response was rejected.
	Text string

	// Called reports whether an external request was issued, success or
	// failure. The orchestrator counts these.
	Called bool
}

// Correct runs the model-assisted path for one sentence. A sentence that
// exactly matches its best candidate short-circuits without a request.
// Otherwise two triggers are evaluated in order, first match wins:
//
//  1. The sentence contains a numeric or year token and a candidate
//     exists: the first such token is wrapped in markers and a span-marked
//     request is issued against the best candidate.
//  2. No numeric span, but similarity to the best candidate is below the
//     escalation threshold: an unmarked minimal-edit request is issued.
//
// Any transport failure, timeout, or empty response falls back to the
// original sentence; failures never propagate.
func (c *Corrector) Correct(ctx context.Context, sentence string, candidates []text.Candidate) Result {
	if c.provider == nil || len(candidates) == 0 {
		return Result{Text: sentence}
	}

	best := candidates[0]

	// A sentence byte-identical to its best candidate is already clean:
	// never spend a request on it.
	if sentence == best.Text {
		return Result{Text: sentence}
	}

	var prompt string
	if span := text.FirstNumericSpan(sentence); span != nil {
		marked := sentence[:span.Start] + MarkerOpen + span.Text + MarkerClose + sentence[span.End:]
		prompt = llm.BuildMarkedPrompt(marked, best.Text, MarkerOpen, MarkerClose)
	} else if float64(best.Score)/100 < c.cfg.LowSimilarity {
		prompt = llm.BuildPrompt(sentence, best.Text)
	} else {
		return Result{Text: sentence}
	}

	response := c.request(ctx, prompt)

	if response == "" {
		return Result{Text: sentence, Called: true}
	}
	if !text.WithinEditBudget(sentence, response, c.cfg.MaxEditFraction) {
		if c.verbose {
			fmt.Fprintf(os.Stderr, "rejected correction (exceeds edit budget %.2f): %q\n", c.cfg.MaxEditFraction, response)
		}
		return Result{Text: sentence, Called: true}
	}

	return Result{Text: response, Called: true}
}

// request issues one completion request and absorbs every failure into an
// empty response, so a dead or misbehaving service degrades to
// "no correction available" instead of aborting the article.
func (c *Corrector) request(ctx context.Context, prompt string) string {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if c.verbose {
				fmt.Fprintf(os.Stderr, "rate limiter interrupted: %v\n", err)
			}
			return ""
		}
	}

	resp, err := c.provider.Correct(ctx, llm.CorrectionRequest{Prompt: prompt})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: correction request failed: %v\n", err)
		return ""
	}

	return resp.Sentence
}
