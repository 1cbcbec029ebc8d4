// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package mcpserver exposes the escalation engine as MCP tools so agents can
// classify and run privileged commands and inspect the audit trail.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/marcelocantos/elevate/internal/audit"
	"github.com/marcelocantos/elevate/internal/escalate"
	"github.com/marcelocantos/elevate/internal/operation"
)

// Engine is the part of *escalate.Engine the server uses.
type Engine interface {
	Execute(ctx context.Context, op operation.Operation) escalate.Result
	Classify(argv []string) operation.Tier
	History() []audit.Record
}

// Summarizer reads the persistent audit log.
type Summarizer interface {
	Summarize(limit int) (*audit.Summary, error)
}

// Server holds the tool handlers.
type Server struct {
	engine         Engine
	log            Summarizer
	summaryLimit   int
	defaultTimeout time.Duration
	logger         *slog.Logger
	mcp            *server.MCPServer
}

// Options tune a Server. Zero values get defaults.
type Options struct {
	Version        string
	SummaryLimit   int
	DefaultTimeout time.Duration
	Logger         *slog.Logger
}

// New builds a Server with all tools registered.
func New(engine Engine, log Summarizer, opts Options) *Server {
	s := &Server{
		engine:         engine,
		log:            log,
		summaryLimit:   opts.SummaryLimit,
		defaultTimeout: opts.DefaultTimeout,
		logger:         opts.Logger,
	}
	if s.defaultTimeout <= 0 {
		s.defaultTimeout = operation.DefaultTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s.mcp = server.NewMCPServer("elevate", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.mcp.AddTool(mcp.NewTool("classify_command",
		mcp.WithDescription("Report the permission tier (basic, elevated, administrative) a command needs. Runs nothing."),
		mcp.WithArray("command", mcp.Required(),
			mcp.Description("argv, executable first"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.handleClassify)
	s.mcp.AddTool(mcp.NewTool("run_privileged",
		mcp.WithDescription("Run a command, escalating privileges if its tier requires it. Every call is written to the audit log."),
		mcp.WithArray("command", mcp.Required(),
			mcp.Description("argv, executable first"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("description", mcp.Description("Why the command is being run; shown to the approver and recorded")),
		mcp.WithString("tier",
			mcp.Description("Permission tier; auto classifies the command"),
			mcp.Enum("auto", "basic", "elevated", "administrative")),
		mcp.WithNumber("timeout_seconds", mcp.Description("Kill the command after this many seconds")),
		mcp.WithString("cwd", mcp.Description("Working directory")),
	), s.handleRun)
	s.mcp.AddTool(mcp.NewTool("audit_summary",
		mcp.WithDescription("Summarize the most recent entries of the audit log."),
		mcp.WithNumber("limit", mcp.Description("How many recent entries to consider")),
	), s.handleAuditSummary)
	s.mcp.AddTool(mcp.NewTool("session_history",
		mcp.WithDescription("List the operations run by this server since it started."),
	), s.handleSessionHistory)
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over the given streams until ctx is done or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

func (s *Server) handleClassify(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	argv := req.GetStringSlice("command", nil)
	if len(argv) == 0 {
		return mcp.NewToolResultError("command must be a non-empty array of strings"), nil
	}
	tier := s.engine.Classify(argv)
	return jsonResult(map[string]any{
		"command": argv,
		"tier":    tier,
	})
}

// runResult is the JSON shape returned by run_privileged.
type runResult struct {
	Outcome   operation.Outcome `json:"outcome"`
	Message   string            `json:"message"`
	ExitCode  int               `json:"exit_code"`
	Tier      operation.Tier    `json:"tier"`
	Escalated bool              `json:"escalated"`
	Stdout    string            `json:"stdout,omitempty"`
	Stderr    string            `json:"stderr,omitempty"`
}

func (s *Server) handleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	argv := req.GetStringSlice("command", nil)
	if len(argv) == 0 {
		return mcp.NewToolResultError("command must be a non-empty array of strings"), nil
	}
	tier, auto, err := operation.ParseRequest(req.GetString("tier", "auto"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := req.GetString("description", "")
	if description == "" {
		description = "MCP request"
	}

	op := operation.New(description, tier, argv...)
	op.AutoClassify = auto
	op.Dir = req.GetString("cwd", "")
	op.Timeout = s.defaultTimeout
	if secs := req.GetFloat("timeout_seconds", 0); secs > 0 {
		op.Timeout = time.Duration(secs * float64(time.Second))
	}

	s.logger.Debug("mcp run_privileged", "command", op.CommandLine(), "tier", req.GetString("tier", "auto"))
	res := s.engine.Execute(ctx, op)
	out, err := jsonResult(runResult{
		Outcome:   res.Outcome,
		Message:   res.Message,
		ExitCode:  res.ExitCode,
		Tier:      res.Tier,
		Escalated: res.Escalated,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
	})
	if err != nil {
		return nil, err
	}
	out.IsError = !res.OK()
	return out, nil
}

func (s *Server) handleAuditSummary(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(req.GetFloat("limit", float64(s.summaryLimit)))
	sum, err := s.log.Summarize(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read audit log: %v", err)), nil
	}
	return jsonResult(sum)
}

func (s *Server) handleSessionHistory(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history := s.engine.History()
	if history == nil {
		history = []audit.Record{}
	}
	return jsonResult(history)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
