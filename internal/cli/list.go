package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, newest first",
		Run:   runList,
	}

	cmd.Flags().StringP("type", "t", "", "Filter by memory type")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().IntP("offset", "o", 0, "Results to skip")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	typeStr, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	var typ model.MemoryType
	if typeStr != "" {
		var err error
		if typ, err = model.ParseMemoryType(typeStr); err != nil {
			exitErr("list", err)
		}
	}

	mgr, s := openManager()
	defer s.Close()

	memories, err := mgr.List(cmd.Context(), typ, limit, offset)
	if err != nil {
		exitErr("list", err)
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}
