package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import memories from a JSON export (stdin if no file given)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("import", err)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		exitErr("import", fmt.Errorf("parse snapshot: %w", err))
	}

	s, _ := openStore()
	defer s.Close()

	imported, err := s.ImportAll(cmd.Context(), &snap)
	if err != nil {
		exitErr("import", err)
	}

	b, _ := json.Marshal(map[string]int{"imported": imported})
	fmt.Println(string(b))
}
