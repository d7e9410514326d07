package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List all tags",
		Run:   runTags,
	}
	cmd.Flags().Bool("purge", false, "Delete tags with no remaining memories")

	RootCmd.AddCommand(cmd)
}

func runTags(cmd *cobra.Command, args []string) {
	purge, _ := cmd.Flags().GetBool("purge")

	mgr, s := openManager()
	defer s.Close()

	if purge {
		removed, err := mgr.PurgeUnusedTags(cmd.Context())
		if err != nil {
			exitErr("tags", err)
		}
		b, _ := json.Marshal(map[string]int{"removed": removed})
		fmt.Println(string(b))
		return
	}

	tags, err := mgr.Tags(cmd.Context())
	if err != nil {
		exitErr("tags", err)
	}
	b, _ := json.MarshalIndent(tags, "", "  ")
	fmt.Println(string(b))
}
