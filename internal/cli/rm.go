package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("rm", fmt.Errorf("invalid id %q", args[0]))
	}

	mgr, s := openManager()
	defer s.Close()

	ok, err := mgr.Delete(cmd.Context(), id)
	if err != nil {
		exitErr("rm", err)
	}
	if !ok {
		exitErr("rm", fmt.Errorf("memory %d not found", id))
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	fmt.Println(string(b))
}
