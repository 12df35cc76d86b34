package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchKnowledgeBaseTool defines the search_knowledge_base MCP tool.
var searchKnowledgeBaseTool = mcp.NewTool("search_knowledge_base",
	mcp.WithDescription("Search the personal knowledge base semantically. Returns the most relevant document chunks with their source files and authors."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of chunks to return (default 3)"),
	),
)

// askKnowledgeBaseTool defines the ask_knowledge_base MCP tool.
var askKnowledgeBaseTool = mcp.NewTool("ask_knowledge_base",
	mcp.WithDescription("Ask a question and get an answer grounded in the knowledge base, with source citations."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to answer"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Number of chunks to use as context (default 3)"),
	),
)
