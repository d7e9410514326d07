package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/memory"
	"github.com/ctxmem/ctxmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [keywords...]",
		Short: "Search memories",
		Long: `Search memories by keywords, tags, type, and date range.

Keywords match content as substrings (any by default, all with --all).
Tags match any-of by default, all-of with --all-tags. Dates are RFC3339.`,
		Run: runSearch,
	}

	cmd.Flags().Bool("all", false, "Require every keyword to match")
	cmd.Flags().StringP("type", "t", "", "Filter by memory type")
	cmd.Flags().String("tags", "", "Comma-separated tag filter")
	cmd.Flags().Bool("all-tags", false, "Require every tag, not any")
	cmd.Flags().String("from", "", "Created on or after (RFC3339)")
	cmd.Flags().String("to", "", "Created on or before (RFC3339)")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().IntP("offset", "o", 0, "Results to skip")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	matchAll, _ := cmd.Flags().GetBool("all")
	typeStr, _ := cmd.Flags().GetString("type")
	tagsStr, _ := cmd.Flags().GetString("tags")
	allTags, _ := cmd.Flags().GetBool("all-tags")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	var typ model.MemoryType
	if typeStr != "" {
		var err error
		if typ, err = model.ParseMemoryType(typeStr); err != nil {
			exitErr("search", err)
		}
	}

	mgr, s := openManager()
	defer s.Close()

	// Keyword-only AND search has its own intersection path; everything
	// else goes through the advanced filter query.
	if matchAll && len(args) > 0 && tagsStr == "" && fromStr == "" && toStr == "" {
		memories, err := mgr.SearchByKeywords(cmd.Context(), args, true, typ, limit)
		if err != nil {
			exitErr("search", err)
		}
		printMemories(memories)
		return
	}

	q := memory.AdvancedQuery{
		Keywords:     args,
		Type:         typ,
		Tags:         splitTags(tagsStr),
		MatchAllTags: allTags,
		Limit:        limit,
		Offset:       offset,
	}
	if fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			exitErr("search", fmt.Errorf("invalid --from %q: want RFC3339", fromStr))
		}
		q.DateFrom = &t
	}
	if toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			exitErr("search", fmt.Errorf("invalid --to %q: want RFC3339", toStr))
		}
		q.DateTo = &t
	}

	memories, err := mgr.SearchAdvanced(cmd.Context(), q)
	if err != nil {
		exitErr("search", err)
	}
	printMemories(memories)
}

func printMemories(memories []model.Memory) {
	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}
