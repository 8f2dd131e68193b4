package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	batchCount   int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Rectify articles from the mapping file, sequentially",
	Long: `Batch processes the article mapping strictly in order, one article
fully completed before the next starts. A failed article is warned about,
its unmodified AI text is persisted as a fallback, and the run continues
to completion - every mapping entry ends up with an output file.

Example:
  rectify batch
  rectify batch --count 16
  rectify batch --no-llm --mapping ./article_mapping.json`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchCount, "count", 0, "number of articles to process (0 = all)")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 2*time.Hour, "total timeout for the batch run")
	addRectifyFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	applyRectifyFlags(cfg)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Rectify Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Mapping:  %s\n", cfg.Store.MappingFile)
	if batchCount > 0 {
		fmt.Fprintf(os.Stderr, "  Count:    first %d articles\n", batchCount)
	} else {
		fmt.Fprintf(os.Stderr, "  Count:    all articles\n")
	}
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:      %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	} else {
		fmt.Fprintf(os.Stderr, "  LLM:      disabled\n")
	}
	fmt.Fprintf(os.Stderr, "  Timeout:  %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	results, err := runner.Run(ctx, batchCount)
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}

	successCount := 0
	fallbackCount := 0
	totalCalls := 0
	totalEdits := 0

	for _, result := range results {
		if result.Error != nil || result.FellBack {
			fallbackCount++
			continue
		}
		successCount++
		totalCalls += result.Diagnostics.LLMCalls
		totalEdits += result.Diagnostics.Edits
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d articles\n", len(results))
	fmt.Fprintf(os.Stderr, "  Rectified:  %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Fallbacks:  %d\n", fallbackCount)
	fmt.Fprintf(os.Stderr, "  LLM calls:  %d\n", totalCalls)
	fmt.Fprintf(os.Stderr, "  Edits:      %d\n", totalEdits)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
