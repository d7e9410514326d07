package cli

import (
	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List memories created in the last N days",
		Run:   runRecent,
	}

	cmd.Flags().Int("days", 7, "Window in days")
	cmd.Flags().StringP("type", "t", "", "Filter by memory type")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runRecent(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")
	typeStr, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	var typ model.MemoryType
	if typeStr != "" {
		var err error
		if typ, err = model.ParseMemoryType(typeStr); err != nil {
			exitErr("recent", err)
		}
	}

	mgr, s := openManager()
	defer s.Close()

	memories, err := mgr.Recent(cmd.Context(), days, typ, limit)
	if err != nil {
		exitErr("recent", err)
	}
	printMemories(memories)
}
