package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmarkov/rectify/internal/model"
)

var (
	mappingFile     string
	articleTimeout  time.Duration
	llmProvider     string
	llmModel        string
	noLLM           bool
	candidates      int
	lowSimilarity   float64
	maxEditFraction float64
)

// articleCmd represents the article command
var articleCmd = &cobra.Command{
	Use:   "article <id>",
	Short: "Rectify a single AI-generated article",
	Long: `Rectify one article end to end:
- Look up the article ID in the mapping file
- Compare the AI-generated text against the trusted source, sentence by sentence
- Fix numeric discrepancies deterministically, escalate the rest to the LLM
- Persist the rectified article and print diagnostics

Example:
  rectify article article_001
  rectify article article_001 --no-llm
  rectify article article_001 --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runArticle,
}

func init() {
	rootCmd.AddCommand(articleCmd)
	addRectifyFlags(articleCmd)
}

// addRectifyFlags registers the flags shared by article and batch.
func addRectifyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mappingFile, "mapping", "", "article mapping file (default: article_mapping.json)")
	cmd.Flags().DurationVar(&articleTimeout, "timeout", 10*time.Minute, "overall timeout per article")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "disable the model-assisted path (deterministic corrections only)")
	cmd.Flags().IntVar(&candidates, "candidates", 0, "source candidates retrieved per sentence (default: 3)")
	cmd.Flags().Float64Var(&lowSimilarity, "low-similarity", 0, "escalation threshold for sentences without numeric spans (default: 0.75)")
	cmd.Flags().Float64Var(&maxEditFraction, "max-edit-fraction", 0, "largest sentence fraction a model correction may change (default: 0.4)")
}

// applyRectifyFlags layers flag values over the loaded configuration.
func applyRectifyFlags(cfg *model.Config) {
	if mappingFile != "" {
		cfg.Store.MappingFile = mappingFile
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noLLM {
		cfg.LLM.Provider = ""
	}
	if candidates > 0 {
		cfg.Rectify.Candidates = candidates
	}
	if lowSimilarity > 0 {
		cfg.Rectify.LowSimilarity = lowSimilarity
	}
	if maxEditFraction > 0 {
		cfg.Rectify.MaxEditFraction = maxEditFraction
	}
}

func runArticle(cmd *cobra.Command, args []string) error {
	articleID := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), articleTimeout)
	defer cancel()

	cfg := loadConfig()
	applyRectifyFlags(cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "Rectifying: %s\n", articleID)
		fmt.Fprintf(os.Stderr, "Mapping: %s\n", cfg.Store.MappingFile)
		if cfg.LLM.Provider != "" {
			fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		} else {
			fmt.Fprintf(os.Stderr, "LLM: disabled\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	result, err := runner.RectifyArticle(ctx, articleID)
	if err != nil {
		return fmt.Errorf("rectify %s: %w", articleID, err)
	}
	if result.Error != nil {
		return fmt.Errorf("rectify %s: %w", articleID, result.Error)
	}

	fmt.Printf("✓ Rectified %s (llm_calls=%d edits=%d)\n", articleID, result.Diagnostics.LLMCalls, result.Diagnostics.Edits)
	return nil
}
