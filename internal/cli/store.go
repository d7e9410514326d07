package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/memory"
	"github.com/ctxmem/ctxmem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "store [content]",
		Short: "Store a memory",
		Long:  "Store a memory. Content can be a positional arg or piped via stdin. Goes through the configured privacy/encryption layer.",
		Run:   runStore,
	}

	cmd.Flags().StringP("type", "t", "note", "Memory type: fact, preference, conversation, note")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	cmd.Flags().StringP("context", "c", "", "Optional context for the memory")

	RootCmd.AddCommand(cmd)
}

func runStore(cmd *cobra.Command, args []string) {
	typeStr, _ := cmd.Flags().GetString("type")
	tagsStr, _ := cmd.Flags().GetString("tags")
	contextStr, _ := cmd.Flags().GetString("context")

	// Content: positional arg first, then stdin.
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	if strings.TrimSpace(content) == "" {
		exitErr("store", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	typ, err := model.ParseMemoryType(typeStr)
	if err != nil {
		exitErr("store", err)
	}

	sec, s := openSecure()
	defer s.Close()

	id, err := sec.Store(cmd.Context(), memory.StoreRequest{
		Content: content,
		Type:    typ,
		Tags:    splitTags(tagsStr),
		Context: contextStr,
	})
	if err != nil {
		exitErr("store", err)
	}

	b, _ := json.Marshal(map[string]int64{"memory_id": id})
	fmt.Println(string(b))
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
