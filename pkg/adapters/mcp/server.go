// Package mcp exposes an Inquest engine as an MCP server, so agent hosts
// can submit evaluation tasks and inspect runs over the protocol.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/inquest"
	"github.com/aretw0/inquest/pkg/domain"
)

// ReportResponse is the structured result of a run_task call.
type ReportResponse struct {
	Task    string          `json:"task" jsonschema_description:"Name of the executed task"`
	Summary inquest.Summary `json:"summary" jsonschema_description:"Aggregate outcome counts"`
	RunIDs  []string        `json:"run_ids" jsonschema_description:"IDs of the stored run records"`
}

// Server wraps the Inquest engine and exposes it as an MCP server.
type Server struct {
	engine    *inquest.Engine
	runner    *inquest.Runner
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance around the engine.
func NewServer(engine *inquest.Engine) *Server {
	s := &Server{
		engine:    engine,
		runner:    inquest.NewRunner(engine),
		mcpServer: server.NewMCPServer("inquest-mcp", strings.TrimSpace(inquest.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	runTool := mcp.NewTool("run_task",
		mcp.WithDescription("Execute an evaluation task: a solver plan over a list of samples. Blocks until every run is terminal and returns the aggregate report."),
		mcp.WithString("task", mcp.Required(), mcp.Description("YAML task definition (name, plan, samples)")),
		mcp.WithOutputSchema[ReportResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunTask))

	getRunTool := mcp.NewTool("get_run",
		mcp.WithDescription("Fetch a stored run record by ID, including its final conversation and score."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Run record ID")),
	)
	s.mcpServer.AddTool(getRunTool, s.handleGetRun)

	s.mcpServer.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List the IDs of all stored runs."),
	), s.handleListRuns)

	s.mcpServer.AddTool(mcp.NewTool("list_solvers",
		mcp.WithDescription("List the solver names available for plan steps."),
	), s.handleListSolvers)
}

func (s *Server) handleRunTask(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ReportResponse, error) {
	text, _ := args["task"].(string)
	if text == "" {
		return ReportResponse{}, errors.New("task definition is required")
	}

	task, err := inquest.ParseTask([]byte(text))
	if err != nil {
		return ReportResponse{}, err
	}

	report, err := s.runner.Run(ctx, task)
	if err != nil {
		return ReportResponse{}, fmt.Errorf("run failed: %w", err)
	}

	resp := ReportResponse{Task: report.Task, Summary: report.Summarize()}
	for _, run := range report.Runs {
		resp.RunIDs = append(resp.RunIDs, run.ID)
	}
	return resp, nil
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	record, err := s.engine.Store().Load(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("run %s not found", runID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.engine.Store().List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListSolvers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(s.engine.Registry().Names())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
