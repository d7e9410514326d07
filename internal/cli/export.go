package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export all memories to JSON (stdout if no file given)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, _ := openStore()
	defer s.Close()

	snap, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		exitErr("export", err)
	}

	if len(args) == 1 {
		if err := os.WriteFile(args[0], b, 0o644); err != nil {
			exitErr("export", err)
		}
		fmt.Fprintf(os.Stderr, "exported %d memories (snapshot %s) to %s\n", len(snap.Memories), snap.ID, args[0])
		return
	}
	fmt.Println(string(b))
}
