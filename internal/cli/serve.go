package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/mcp"
	"github.com/ctxmem/ctxmem/internal/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long:  "Run the MCP server over stdio. Stdout carries the protocol; logs go to stderr.",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	s, _ := openStore()
	defer s.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv := mcp.NewServer(memory.NewManager(s), log)

	if err := srv.ServeStdio(cmd.Context()); err != nil {
		exitErr("serve", err)
	}
}
