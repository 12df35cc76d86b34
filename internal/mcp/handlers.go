package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gvilla/kbase/internal/vectordb"
)

// handleSearchKnowledgeBase performs semantic search over the index.
func (s *Server) handleSearchKnowledgeBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", s.topK)
	if limit <= 0 {
		limit = s.topK
	}

	if s.index == nil || s.index.Count() == 0 {
		return mcp.NewToolResultText("The knowledge base is not indexed yet. Run `kbase build` to index it."), nil
	}

	results, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No results found for this query."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleAskKnowledgeBase runs the full retrieve-and-answer pipeline.
func (s *Server) handleAskKnowledgeBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	if s.engine == nil {
		return mcp.NewToolResultError("No LLM provider is configured; answering is unavailable. Use search_knowledge_base instead."), nil
	}

	limit := request.GetInt("limit", s.topK)
	if limit <= 0 {
		limit = s.topK
	}

	result, err := s.engine.Ask(ctx, question, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(result.Answer)
	if len(result.Sources) > 0 {
		sb.WriteString("\n\nSources:\n")
		for _, src := range result.Sources {
			sb.WriteString(fmt.Sprintf("- %s by %s (%s)\n", src.File, src.Author, src.Topic))
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults converts search results into a text format optimized
// for AI agent consumption.
func formatSearchResults(results []vectordb.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))

		if src := r.Chunk.Metadata["source"]; src != "" {
			sb.WriteString(fmt.Sprintf("File: %s\n", src))
		}
		if author := r.Chunk.Metadata["author"]; author != "" {
			sb.WriteString(fmt.Sprintf("Author: %s\n", author))
		}
		if topic := r.Chunk.Metadata["topic"]; topic != "" {
			sb.WriteString(fmt.Sprintf("Topic: %s\n", topic))
		}
		sb.WriteString(fmt.Sprintf("Distance: %.4f\n", r.Distance))

		sb.WriteString("\n")
		sb.WriteString(r.Chunk.Content)
		sb.WriteString("\n")
	}

	return sb.String()
}
