package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a memory's content, context, or tags",
		Args:  cobra.ExactArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().String("content", "", "New content")
	cmd.Flags().StringP("context", "c", "", "New context (empty string clears it)")
	cmd.Flags().String("tags", "", "Comma-separated tags, replacing the full tag set (empty clears all tags)")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("update", fmt.Errorf("invalid id %q", args[0]))
	}

	// Changed, not value: an empty --context or --tags is a deliberate clear.
	var req memory.UpdateRequest
	if cmd.Flags().Changed("content") {
		content, _ := cmd.Flags().GetString("content")
		req.Content = &content
	}
	if cmd.Flags().Changed("context") {
		contextStr, _ := cmd.Flags().GetString("context")
		req.Context = &contextStr
	}
	if cmd.Flags().Changed("tags") {
		tagsStr, _ := cmd.Flags().GetString("tags")
		tags := splitTags(tagsStr)
		if tags == nil {
			tags = []string{}
		}
		req.Tags = tags
	}
	if req.Content == nil && req.Context == nil && req.Tags == nil {
		exitErr("update", fmt.Errorf("nothing to update: pass --content, --context, or --tags"))
	}

	mgr, s := openManager()
	defer s.Close()

	ok, err := mgr.Update(cmd.Context(), id, req)
	if err != nil {
		exitErr("update", err)
	}
	if !ok {
		exitErr("update", fmt.Errorf("memory %d not found", id))
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	fmt.Println(string(b))
}
