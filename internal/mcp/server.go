// Package mcp exposes the memory service as a set of MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ctxmem/ctxmem/internal/memory"
)

// Server adapts the memory service to the Model Context Protocol.
type Server struct {
	mgr *memory.Manager
	log *slog.Logger
}

// NewServer builds an MCP server over the given memory manager.
func NewServer(mgr *memory.Manager, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{mgr: mgr, log: log}
}

// ServeStdio runs the MCP server on stdin/stdout until the client
// disconnects or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "ctxmem",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: `ctxmem is a persistent context memory store.

Store facts, preferences, conversation snippets and notes with store_memory,
find them again with retrieve_memories (substring search) or search_memories
(keywords, tags, date ranges). get_memory fetches one entry by id and counts
the access. Tags are free-form, lower-cased, and shared across memories.`,
		},
	)

	s.registerTools(server)

	s.log.Info("mcp server starting", "transport", "stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "store_memory",
		Description: "Store a new memory. Requires content and memory_type (fact, preference, conversation, note); tags and context are optional. Returns the new memory id.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Store Memory",
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(false),
		},
	}, s.handleStoreMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "retrieve_memories",
		Description: "Search memory content for a substring. Optional memory_type filter and result limit. Does not change access counts.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Retrieve Memories",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, s.handleRetrieveMemories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_memories",
		Description: "Advanced search over keywords, memory_type, tags (any-of, or all-of with match_all_tags), and an inclusive RFC3339 date range, with limit/offset pagination.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Search Memories",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, s.handleSearchMemories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_memory",
		Description: "Fetch one memory by id. Increments its access count and refreshes last_accessed.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Memory",
			OpenWorldHint: boolPtr(false),
		},
	}, s.handleGetMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_memory",
		Description: "Update a memory's content, context, and/or tags. Omitted fields are left unchanged; a provided tags list replaces the full tag set.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Update Memory",
			DestructiveHint: boolPtr(false),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(false),
		},
	}, s.handleUpdateMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_memory",
		Description: "Delete a memory by id, removing its tag associations.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Memory",
			DestructiveHint: boolPtr(true),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(false),
		},
	}, s.handleDeleteMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_memories",
		Description: "List memories newest first, optionally filtered by memory_type, with limit/offset pagination.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Memories",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, s.handleListMemories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_memories",
		Description: "Delete all memories, or all memories of one memory_type. Returns the number removed.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Clear Memories",
			DestructiveHint: boolPtr(true),
			OpenWorldHint:   boolPtr(false),
		},
	}, s.handleClearMemories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_memory_statistics",
		Description: "Aggregate statistics: totals, per-type counts, tag vocabulary size, access and content-length aggregates.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Memory Statistics",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, s.handleStatistics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_tags",
		Description: "List every tag name in the vocabulary.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Tags",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, s.handleGetTags)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "purge_unused_tags",
		Description: "Delete tags no longer associated with any memory. Returns the number removed.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Purge Unused Tags",
			DestructiveHint: boolPtr(true),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(false),
		},
	}, s.handlePurgeUnusedTags)
}

func boolPtr(b bool) *bool {
	return &b
}
