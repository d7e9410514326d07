package cli

import (
	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "frequent",
		Short: "List frequently accessed memories, most accessed first",
		Run:   runFrequent,
	}

	cmd.Flags().Int("min-access", 2, "Minimum access count")
	cmd.Flags().StringP("type", "t", "", "Filter by memory type")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runFrequent(cmd *cobra.Command, args []string) {
	minAccess, _ := cmd.Flags().GetInt("min-access")
	typeStr, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	var typ model.MemoryType
	if typeStr != "" {
		var err error
		if typ, err = model.ParseMemoryType(typeStr); err != nil {
			exitErr("frequent", err)
		}
	}

	mgr, s := openManager()
	defer s.Close()

	memories, err := mgr.FrequentlyAccessed(cmd.Context(), minAccess, typ, limit)
	if err != nil {
		exitErr("frequent", err)
	}
	printMemories(memories)
}
