package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmarkov/rectify/internal/budget"
)

// budgetCmd represents the budget command
var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Check completion API key spend against its budget",
	Long: `Check the configured completion API key's usage against its allocated
budget on a LiteLLM proxy.

Setup:
  export LLM_API_KEY=sk-...
  export LLM_API_BASE=https://your-litellm-proxy

Every completion request made by 'rectify article' or 'rectify batch' is
tracked by the proxy; this command reads the running total back.`,
	Args: cobra.NoArgs,
	RunE: runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("LLM_API_KEY")
	baseURL := os.Getenv("LLM_API_BASE")

	client, err := budget.NewClient(baseURL, apiKey, budgetTimeout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), budgetTimeout)
	defer cancel()

	if verbose && len(apiKey) >= 8 {
		fmt.Fprintf(os.Stderr, "Checking budget for key: %s...%s\n", apiKey[:4], apiKey[len(apiKey)-4:])
	}

	info, err := client.KeyInfo(ctx)
	if err != nil {
		return fmt.Errorf("fetch key info: %w", err)
	}

	fmt.Println("\nAPI Budget Status")
	fmt.Println("-------------------")
	fmt.Printf("User ID:     %s\n", info.UserID)
	fmt.Printf("Total spend: $%.4f\n", info.Spend)

	if remaining, ok := info.Remaining(); ok {
		fmt.Printf("Max budget:  $%.4f\n", *info.MaxBudget)
		fmt.Printf("Remaining:   $%.4f\n", remaining)
		if frac, ok := info.UsageFraction(); ok && frac > 0.9 {
			fmt.Println("Status:      critical (>90% used)")
		} else if ok && frac > 0.75 {
			fmt.Println("Status:      warning (>75% used)")
		} else {
			fmt.Println("Status:      ok")
		}
	} else {
		fmt.Println("Max budget:  unlimited")
	}
	fmt.Println("-------------------")

	return nil
}
