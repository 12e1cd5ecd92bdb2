// Package mcpadapter exposes case queries as Model Context Protocol tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
)

const (
	serverName    = "judgment-assistant"
	serverVersion = "1.0.0"

	toolAsk     = "ask_judgments"
	toolGetCase = "get_case"
)

type Server struct {
	query  ports.CaseQueryService
	cases  ports.CaseReader
	logger *slog.Logger
	mcp    *server.MCPServer
}

func NewServer(query ports.CaseQueryService, cases ports.CaseReader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		query:  query,
		cases:  cases,
		logger: logger,
		mcp:    server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(toolAsk,
		mcp.WithDescription("Answer a question about indexed court judgments: case ids, judges, parties, sections, dates and outcomes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language question, e.g. 'Who was the judge in Crl.MC.No. 6 of 2014?'")),
	), s.handleAsk)
	s.mcp.AddTool(mcp.NewTool(toolGetCase,
		mcp.WithDescription("Return the structured case record extracted from one uploaded document."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id returned by the upload API.")),
	), s.handleGetCase)

	return s
}

func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks until stdin is closed.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) NewHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.mcp)
}

type askResult struct {
	Answer    string   `json:"answer"`
	Outcome   string   `json:"outcome"`
	Path      string   `json:"path"`
	Intent    string   `json:"intent,omitempty"`
	Shortlist []string `json:"shortlist"`
}

func (s *Server) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := s.query.Ask(ctx, query)
	if err != nil {
		s.logger.Warn("mcp_tool_failed", "tool", toolAsk, "error", err)
		return mcp.NewToolResultError(toolErrorMessage(err)), nil
	}

	out := askResult{
		Answer:    answer.Text,
		Outcome:   string(answer.Outcome),
		Path:      string(answer.Path),
		Intent:    answer.Intent,
		Shortlist: make([]string, 0, len(answer.Shortlist)),
	}
	for _, r := range answer.Shortlist {
		out.Shortlist = append(out.Shortlist, r.Record.CaseID)
	}
	return jsonResult(out)
}

func (s *Server) handleGetCase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := s.cases.GetByDocumentID(ctx, documentID)
	if err != nil {
		s.logger.Warn("mcp_tool_failed", "tool", toolGetCase, "document_id", documentID, "error", err)
		return mcp.NewToolResultError(toolErrorMessage(err)), nil
	}
	return jsonResult(rec)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func toolErrorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrCaseNotFound), domain.IsKind(err, domain.ErrDocumentNotFound):
		return "no indexed case for this document"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return err.Error()
	case domain.IsKind(err, domain.ErrIndexUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return "case index is temporarily unavailable, retry later"
	default:
		return "internal error"
	}
}
