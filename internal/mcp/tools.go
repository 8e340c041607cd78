package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Search the user's financial documents semantically. Returns matching documents with their best excerpts."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of documents to return (default 20)"),
	),
)

// queueStatusTool defines the queue_status MCP tool.
var queueStatusTool = mcp.NewTool("queue_status",
	mcp.WithDescription("Report the state of the document upload queue: jobs, progress, and error counts."),
)
