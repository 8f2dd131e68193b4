// Package worker drives rectification runs over the article mapping.
// Articles are processed strictly sequentially: one article is fully
// resolved, including every blocking completion request, before the next
// begins, and a per-article failure never aborts the run.
package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/pmarkov/rectify/internal/model"
	"github.com/pmarkov/rectify/internal/rectify"
	"github.com/pmarkov/rectify/internal/store"
)

// Runner rectifies articles resolved through a Store.
type Runner struct {
	store    *store.Store
	pipeline *rectify.Pipeline
	verbose  bool
}

// NewRunner creates a Runner.
func NewRunner(st *store.Store, p *rectify.Pipeline, verbose bool) *Runner {
	return &Runner{
		store:    st,
		pipeline: p,
		verbose:  verbose,
	}
}

// RectifyArticle rectifies one article end to end and persists the result.
// When rectification cannot complete (e.g. the source article is missing),
// the AI-generated text is persisted unmodified so every article has an
// output, and the failure is reported in the result rather than returned.
//
// A missing article ID is the one hard error: with no AI text there is
// nothing to fall back to.
func (r *Runner) RectifyArticle(ctx context.Context, articleID string) (*model.ArticleResult, error) {
	aiText, err := r.store.AIArticle(articleID)
	if err != nil {
		return nil, fmt.Errorf("load AI article: %w", err)
	}

	result := &model.ArticleResult{ArticleID: articleID}

	sourceText, err := r.store.SourceArticle(articleID)
	if err != nil {
		result.Error = fmt.Errorf("load source article: %w", err)
		result.FellBack = true
		if saveErr := r.store.SaveRectified(articleID, aiText); saveErr != nil {
			result.Error = fmt.Errorf("%w (fallback save also failed: %v)", result.Error, saveErr)
		}
		return result, nil
	}

	rectified, diag := r.pipeline.Rectify(ctx, aiText, sourceText)
	result.Diagnostics = diag

	if err := r.store.SaveRectified(articleID, rectified); err != nil {
		result.Error = fmt.Errorf("save rectified article: %w", err)
		return result, nil
	}

	// One diagnostics line per article, for observability only.
	fmt.Fprintf(os.Stderr, "OK: %s llm_calls=%d edits=%d\n", articleID, diag.LLMCalls, diag.Edits)

	return result, nil
}

// Run processes the first count mapping entries in order (count <= 0
// means all). Failed articles are warned about and the run continues;
// every entry produces a result.
func (r *Runner) Run(ctx context.Context, count int) ([]*model.ArticleResult, error) {
	entries, err := r.store.Mapping()
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}

	if count > 0 && count < len(entries) {
		entries = entries[:count]
	}

	results := make([]*model.ArticleResult, 0, len(entries))
	for i, entry := range entries {
		if r.verbose {
			fmt.Fprintf(os.Stderr, "Processing %s (%d/%d)...\n", entry.ArticleID, i+1, len(entries))
		}

		result, err := r.RectifyArticle(ctx, entry.ArticleID)
		if err != nil {
			// No AI text to fall back to; record and keep going.
			result = &model.ArticleResult{ArticleID: entry.ArticleID, Error: err}
		}
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", entry.ArticleID, result.Error)
		}

		results = append(results, result)
	}

	return results, nil
}
