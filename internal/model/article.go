package model

// MappingEntry is one record of article_mapping.json, pointing an article
// ID at its AI-generated input, trusted source, and rectified output files.
type MappingEntry struct {
	ArticleID     string `json:"article_id"`
	AIFile        string `json:"ai_generated_file"`
	SourceFile    string `json:"source_file"`
	RectifiedFile string `json:"rectified_file"`
}

// Diagnostics counts external calls and edits for one rectification run.
// It is owned by the orchestrator; corrector components report outcomes
// through return values, never by writing here.
type Diagnostics struct {
	LLMCalls int `json:"llm_calls"`
	Edits    int `json:"edits"`
}

// DecisionKind records which correction path resolved a sentence.
type DecisionKind string

const (
	DecisionUnchanged     DecisionKind = "unchanged"
	DecisionDeterministic DecisionKind = "deterministic"
	DecisionModelAssisted DecisionKind = "model_assisted"
)

// Decision is the outcome of processing one AI sentence.
type Decision struct {
	Kind   DecisionKind `json:"kind"`
	Text   string       `json:"text"`
	Edited bool         `json:"edited"`
}

// ArticleResult is the outcome of rectifying one article in a batch run.
type ArticleResult struct {
	ArticleID   string      `json:"article_id"`
	Diagnostics Diagnostics `json:"diagnostics"`
	FellBack    bool        `json:"fell_back"` // original AI text persisted after a failure
	Error       error       `json:"-"`
}
