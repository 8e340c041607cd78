package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/rag"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search your documents in natural language",
	Long: `Embeds the query and ranks your processed documents by semantic
similarity, printing the best-matching documents with excerpts.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of documents to return (default: config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := buildStack(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	resp, err := st.searcher.Search(context.Background(), localOwner, args[0], limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.Results) == 0 {
		fmt.Println(resp.Message)
		return nil
	}

	printSearchResults(resp)
	return nil
}

func printSearchResults(resp *rag.SearchResponse) {
	fmt.Printf("Found %d matching document(s):\n\n", len(resp.Results))
	for i, r := range resp.Results {
		fmt.Printf("  %d. [%.1f%%] %s (%d matching chunk(s))\n", i+1, r.MaxSimilarity*100, r.DocumentID, r.MatchedChunks)
		for _, e := range r.Excerpts {
			fmt.Printf("     %s\n", truncate(e, 120))
		}
		fmt.Println()
	}
	if resp.Answer != "" {
		fmt.Printf("Answer: %s\n", resp.Answer)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
