package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all memories, or all of one type",
		Run:   runClear,
	}

	cmd.Flags().StringP("type", "t", "", "Only clear this memory type")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	typeStr, _ := cmd.Flags().GetString("type")

	var typ model.MemoryType
	if typeStr != "" {
		var err error
		if typ, err = model.ParseMemoryType(typeStr); err != nil {
			exitErr("clear", err)
		}
	}

	mgr, s := openManager()
	defer s.Close()

	removed, err := mgr.Clear(cmd.Context(), typ)
	if err != nil {
		exitErr("clear", err)
	}

	b, _ := json.Marshal(map[string]int{"removed": removed})
	fmt.Println(string(b))
}
