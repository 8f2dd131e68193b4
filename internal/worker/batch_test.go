package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pmarkov/rectify/internal/model"
	"github.com/pmarkov/rectify/internal/rectify"
	"github.com/pmarkov/rectify/internal/store"
)

// newTestRunner builds a Runner over a temp-dir store and a pipeline with
// no external provider: deterministic corrections still apply, everything
// else passes through.
func newTestRunner(t *testing.T, entries []model.MappingEntry) *Runner {
	t.Helper()

	dir := t.TempDir()
	mappingFile := filepath.Join(dir, "article_mapping.json")
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal mapping: %v", err)
	}
	if err := os.WriteFile(mappingFile, data, 0644); err != nil {
		t.Fatalf("write mapping: %v", err)
	}

	st := store.New(model.StoreConfig{MappingFile: mappingFile})

	cfg := model.DefaultConfig().Rectify
	corrector := rectify.NewCorrector(nil, nil, cfg, false)
	pipeline := rectify.NewPipeline(corrector, cfg, false)

	return NewRunner(st, pipeline, false)
}

func writeArticle(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRectifyArticle_DeterministicEndToEnd(t *testing.T) {
	dir := t.TempDir()
	aiFile := filepath.Join(dir, "ai", "001.txt")
	srcFile := filepath.Join(dir, "sources", "001.txt")
	outFile := filepath.Join(dir, "rectified", "001.txt")

	writeArticle(t, aiFile, "Sales reached 10 million units.")
	writeArticle(t, srcFile, "Sales reached 12 million units.")

	runner := newTestRunner(t, []model.MappingEntry{
		{ArticleID: "article_001", AIFile: aiFile, SourceFile: srcFile, RectifiedFile: outFile},
	})

	result, err := runner.RectifyArticle(context.Background(), "article_001")
	if err != nil {
		t.Fatalf("RectifyArticle failed: %v", err)
	}

	if result.Error != nil {
		t.Errorf("unexpected result error: %v", result.Error)
	}
	if result.FellBack {
		t.Error("successful run flagged as fallback")
	}
	if result.Diagnostics.Edits != 1 {
		t.Errorf("edits = %d, want 1", result.Diagnostics.Edits)
	}
	if result.Diagnostics.LLMCalls != 0 {
		t.Errorf("llm_calls = %d, want 0", result.Diagnostics.LLMCalls)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read rectified output: %v", err)
	}
	if string(data) != "Sales reached 12 million units." {
		t.Errorf("rectified output = %q", string(data))
	}
}

func TestRectifyArticle_MissingSourceFallsBack(t *testing.T) {
	dir := t.TempDir()
	aiFile := filepath.Join(dir, "ai", "002.txt")
	outFile := filepath.Join(dir, "rectified", "002.txt")

	original := "Sales reached 10 million units. Unverifiable prose follows."
	writeArticle(t, aiFile, original)

	runner := newTestRunner(t, []model.MappingEntry{
		{
			ArticleID:     "article_002",
			AIFile:        aiFile,
			SourceFile:    filepath.Join(dir, "sources", "missing.txt"),
			RectifiedFile: outFile,
		},
	})

	result, err := runner.RectifyArticle(context.Background(), "article_002")
	if err != nil {
		t.Fatalf("missing source must not be a hard error: %v", err)
	}

	if !result.FellBack {
		t.Error("expected FellBack = true")
	}
	if result.Error == nil {
		t.Error("expected the failure to be recorded on the result")
	}

	// The AI text must be persisted verbatim.
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("fallback output missing: %v", err)
	}
	if string(data) != original {
		t.Errorf("fallback output = %q, want the unmodified AI text", string(data))
	}
}

func TestRectifyArticle_UnknownIDIsHardError(t *testing.T) {
	runner := newTestRunner(t, nil)

	if _, err := runner.RectifyArticle(context.Background(), "article_999"); err == nil {
		t.Fatal("expected hard error for unknown article ID")
	}
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()

	aiGood := filepath.Join(dir, "ai", "good.txt")
	srcGood := filepath.Join(dir, "sources", "good.txt")
	outGood := filepath.Join(dir, "rectified", "good.txt")
	writeArticle(t, aiGood, "The plant opened in 1995.")
	writeArticle(t, srcGood, "The plant opened in 1998.")

	aiBroken := filepath.Join(dir, "ai", "broken.txt")
	outBroken := filepath.Join(dir, "rectified", "broken.txt")
	writeArticle(t, aiBroken, "No source for this one.")

	runner := newTestRunner(t, []model.MappingEntry{
		{ArticleID: "broken", AIFile: aiBroken, SourceFile: filepath.Join(dir, "sources", "gone.txt"), RectifiedFile: outBroken},
		{ArticleID: "good", AIFile: aiGood, SourceFile: srcGood, RectifiedFile: outGood},
	})

	results, err := runner.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].FellBack {
		t.Error("broken article should fall back")
	}
	if results[1].Error != nil {
		t.Errorf("good article failed: %v", results[1].Error)
	}

	data, err := os.ReadFile(outGood)
	if err != nil {
		t.Fatalf("read rectified output: %v", err)
	}
	if string(data) != "The plant opened in 1998." {
		t.Errorf("rectified output = %q", string(data))
	}
}

func TestRun_CountLimitsEntries(t *testing.T) {
	dir := t.TempDir()

	var entries []model.MappingEntry
	for _, id := range []string{"a", "b", "c"} {
		aiFile := filepath.Join(dir, "ai", id+".txt")
		srcFile := filepath.Join(dir, "sources", id+".txt")
		writeArticle(t, aiFile, "Same text.")
		writeArticle(t, srcFile, "Same text.")
		entries = append(entries, model.MappingEntry{
			ArticleID:     id,
			AIFile:        aiFile,
			SourceFile:    srcFile,
			RectifiedFile: filepath.Join(dir, "rectified", id+".txt"),
		})
	}

	runner := newTestRunner(t, entries)

	results, err := runner.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results with count=2, got %d", len(results))
	}

	if _, err := os.Stat(filepath.Join(dir, "rectified", "c.txt")); !os.IsNotExist(err) {
		t.Error("third article should not have been processed")
	}
}
