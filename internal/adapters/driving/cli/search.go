package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

var (
	searchCount     int
	searchCategory  string
	searchLivecrawl bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a cached web search",
	Long: `Runs a query through the search provider and caches every result.
Repeating a query answers from the local cache; asking for more results
than are cached fetches only the missing ones.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchCount, "count", "n", 5, "number of results")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "result category filter (e.g. 'news', 'research paper')")
	searchCmd.Flags().BoolVar(&searchLivecrawl, "livecrawl", false, "ask the provider for freshly crawled page content")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if researchService == nil {
		return errors.New("research service not configured")
	}

	query := domain.Query{
		Text:      args[0],
		Count:     searchCount,
		Category:  searchCategory,
		Livecrawl: searchLivecrawl,
	}

	resp, err := researchService.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}

	return outputSearchTable(cmd, resp)
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Documents) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%s):\n", resp.CacheStatus)
	cmd.Println()
	for i := range resp.Documents {
		doc := &resp.Documents[i]

		title := doc.Title
		if title == "" {
			title = doc.URL
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, doc.Score)
		cmd.Printf("      %s\n", doc.URL)
		cmd.Printf("      fingerprint: %s\n", doc.Fingerprint)
		cmd.Println()
	}

	if resp.Partial && resp.Warning != "" {
		cmd.Printf("Warning: %s\n", resp.Warning)
	}

	return nil
}
