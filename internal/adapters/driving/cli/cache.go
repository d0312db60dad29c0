package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

var cacheListLimit int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local result cache",
	Long:  `Commands for inspecting cached queries and documents.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached queries",
	RunE:  runCacheList,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show [fingerprint]",
	Short: "Show the full text of a cached document",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheShow,
}

func init() {
	cacheListCmd.Flags().IntVarP(&cacheListLimit, "limit", "n", 20, "maximum number of entries")
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	if researchService == nil {
		return errors.New("research service not configured")
	}

	entries, err := researchService.ListCached(cmd.Context(), cacheListLimit)
	if err != nil {
		return fmt.Errorf("listing cache: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("Cache is empty.")
		return nil
	}

	cmd.Println("Cached queries:")
	cmd.Println()
	for i := range entries {
		cmd.Printf("  %s\n", displayQueryKey(entries[i].QueryKey))
		cmd.Printf("      %d document(s), provider %s, fetched %s\n",
			len(entries[i].Documents), entries[i].Provider,
			entries[i].FetchedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	return nil
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	if researchService == nil {
		return errors.New("research service not configured")
	}

	doc, err := researchService.GetDocument(cmd.Context(), domain.Fingerprint(args[0]))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no cached document with fingerprint %s", args[0])
		}
		return fmt.Errorf("getting document: %w", err)
	}

	if doc.Title != "" {
		cmd.Println(doc.Title)
	}
	cmd.Println(doc.URL)
	cmd.Println()
	cmd.Println(doc.Text)

	return nil
}

// displayQueryKey renders a query key for humans. Keys embed NUL
// separators between the canonical text, category and livecrawl parts.
func displayQueryKey(key string) string {
	parts := strings.Split(key, "\x00")
	if len(parts) != 3 {
		return key
	}

	out := fmt.Sprintf("%q", parts[0])
	if parts[1] != "" {
		out += " category=" + parts[1]
	}
	if parts[2] == "true" {
		out += " livecrawl"
	}
	return out
}
