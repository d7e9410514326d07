package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ctxmem/ctxmem/internal/memory"
	"github.com/ctxmem/ctxmem/internal/model"
)

// StoreMemoryInput are the arguments for store_memory.
type StoreMemoryInput struct {
	Content    string   `json:"content"`
	MemoryType string   `json:"memory_type"`
	Tags       []string `json:"tags,omitempty"`
	Context    string   `json:"context,omitempty"`
}

// StoreMemoryOutput is the store_memory result payload.
type StoreMemoryOutput struct {
	MemoryID int64 `json:"memory_id"`
}

func (s *Server) handleStoreMemory(ctx context.Context, req *mcp.CallToolRequest, input StoreMemoryInput) (*mcp.CallToolResult, interface{}, error) {
	typ, err := model.ParseMemoryType(input.MemoryType)
	if err != nil {
		return nil, nil, err
	}
	id, err := s.mgr.Store(ctx, memory.StoreRequest{
		Content: input.Content,
		Type:    typ,
		Tags:    input.Tags,
		Context: input.Context,
	})
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("stored memory", "id", id, "type", typ)
	return nil, StoreMemoryOutput{MemoryID: id}, nil
}

// RetrieveMemoriesInput are the arguments for retrieve_memories.
type RetrieveMemoriesInput struct {
	Query      string `json:"query"`
	MemoryType string `json:"memory_type,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// MemoriesOutput carries a result list with its count.
type MemoriesOutput struct {
	Memories []model.Memory `json:"memories"`
	Count    int            `json:"count"`
}

func (s *Server) handleRetrieveMemories(ctx context.Context, req *mcp.CallToolRequest, input RetrieveMemoriesInput) (*mcp.CallToolResult, interface{}, error) {
	typ, err := optionalType(input.MemoryType)
	if err != nil {
		return nil, nil, err
	}
	memories, err := s.mgr.Retrieve(ctx, input.Query, typ, input.Limit)
	if err != nil {
		return nil, nil, err
	}
	return nil, MemoriesOutput{Memories: memories, Count: len(memories)}, nil
}

// SearchMemoriesInput are the arguments for search_memories.
type SearchMemoriesInput struct {
	Keywords     []string `json:"keywords,omitempty"`
	MemoryType   string   `json:"memory_type,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	MatchAllTags bool     `json:"match_all_tags,omitempty"`
	DateFrom     string   `json:"date_from,omitempty"` // RFC3339
	DateTo       string   `json:"date_to,omitempty"`   // RFC3339
	Limit        int      `json:"limit,omitempty"`
	Offset       int      `json:"offset,omitempty"`
}

func (s *Server) handleSearchMemories(ctx context.Context, req *mcp.CallToolRequest, input SearchMemoriesInput) (*mcp.CallToolResult, interface{}, error) {
	typ, err := optionalType(input.MemoryType)
	if err != nil {
		return nil, nil, err
	}
	dateFrom, err := optionalDate("date_from", input.DateFrom)
	if err != nil {
		return nil, nil, err
	}
	dateTo, err := optionalDate("date_to", input.DateTo)
	if err != nil {
		return nil, nil, err
	}

	memories, err := s.mgr.SearchAdvanced(ctx, memory.AdvancedQuery{
		Keywords:     input.Keywords,
		Type:         typ,
		Tags:         input.Tags,
		MatchAllTags: input.MatchAllTags,
		DateFrom:     dateFrom,
		DateTo:       dateTo,
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, MemoriesOutput{Memories: memories, Count: len(memories)}, nil
}

// GetMemoryInput are the arguments for get_memory.
type GetMemoryInput struct {
	MemoryID int64 `json:"memory_id"`
}

func (s *Server) handleGetMemory(ctx context.Context, req *mcp.CallToolRequest, input GetMemoryInput) (*mcp.CallToolResult, interface{}, error) {
	mem, err := s.mgr.GetByID(ctx, input.MemoryID)
	if err != nil {
		return nil, nil, err
	}
	if mem == nil {
		return nil, nil, fmt.Errorf("memory %d not found", input.MemoryID)
	}
	return nil, mem, nil
}

// UpdateMemoryInput are the arguments for update_memory. Pointer fields
// distinguish "omitted" from "set to empty".
type UpdateMemoryInput struct {
	MemoryID int64    `json:"memory_id"`
	Content  *string  `json:"content,omitempty"`
	Context  *string  `json:"context,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// BoolOutput reports whether a mutation found its target.
type BoolOutput struct {
	Success bool `json:"success"`
}

func (s *Server) handleUpdateMemory(ctx context.Context, req *mcp.CallToolRequest, input UpdateMemoryInput) (*mcp.CallToolResult, interface{}, error) {
	ok, err := s.mgr.Update(ctx, input.MemoryID, memory.UpdateRequest{
		Content: input.Content,
		Context: input.Context,
		Tags:    input.Tags,
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, BoolOutput{Success: ok}, nil
}

// DeleteMemoryInput are the arguments for delete_memory.
type DeleteMemoryInput struct {
	MemoryID int64 `json:"memory_id"`
}

func (s *Server) handleDeleteMemory(ctx context.Context, req *mcp.CallToolRequest, input DeleteMemoryInput) (*mcp.CallToolResult, interface{}, error) {
	ok, err := s.mgr.Delete(ctx, input.MemoryID)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		s.log.Info("deleted memory", "id", input.MemoryID)
	}
	return nil, BoolOutput{Success: ok}, nil
}

// ListMemoriesInput are the arguments for list_memories.
type ListMemoriesInput struct {
	MemoryType string `json:"memory_type,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

func (s *Server) handleListMemories(ctx context.Context, req *mcp.CallToolRequest, input ListMemoriesInput) (*mcp.CallToolResult, interface{}, error) {
	typ, err := optionalType(input.MemoryType)
	if err != nil {
		return nil, nil, err
	}
	memories, err := s.mgr.List(ctx, typ, input.Limit, input.Offset)
	if err != nil {
		return nil, nil, err
	}
	return nil, MemoriesOutput{Memories: memories, Count: len(memories)}, nil
}

// ClearMemoriesInput are the arguments for clear_memories.
type ClearMemoriesInput struct {
	MemoryType string `json:"memory_type,omitempty"`
}

// CountOutput reports how many rows an operation removed.
type CountOutput struct {
	Removed int `json:"removed"`
}

func (s *Server) handleClearMemories(ctx context.Context, req *mcp.CallToolRequest, input ClearMemoriesInput) (*mcp.CallToolResult, interface{}, error) {
	typ, err := optionalType(input.MemoryType)
	if err != nil {
		return nil, nil, err
	}
	removed, err := s.mgr.Clear(ctx, typ)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("cleared memories", "type", typ, "removed", removed)
	return nil, CountOutput{Removed: removed}, nil
}

// EmptyInput is the argument shape for tools that take no parameters.
type EmptyInput struct{}

func (s *Server) handleStatistics(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, interface{}, error) {
	stats, err := s.mgr.Statistics(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, stats, nil
}

// TagsOutput lists tag names.
type TagsOutput struct {
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

func (s *Server) handleGetTags(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, interface{}, error) {
	tags, err := s.mgr.Tags(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, TagsOutput{Tags: tags, Count: len(tags)}, nil
}

func (s *Server) handlePurgeUnusedTags(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, interface{}, error) {
	removed, err := s.mgr.PurgeUnusedTags(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, CountOutput{Removed: removed}, nil
}

func optionalType(s string) (model.MemoryType, error) {
	if s == "" {
		return "", nil
	}
	return model.ParseMemoryType(s)
}

func optionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q is not RFC3339", field, s)
	}
	return &t, nil
}
