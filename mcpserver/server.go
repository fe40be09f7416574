package mcpserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/clisandbox/config"
	"github.com/isdmx/clisandbox/sandbox"
)

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	mcpServer *server.MCPServer

	mu       sync.Mutex
	projects map[string]*sandbox.Project
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger) (*MCPServer, error) {
	s := &MCPServer{
		config:   cfg,
		logger:   logger,
		projects: make(map[string]*sandbox.Project),
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("subject.name", s.config.Subject.Name),
		zap.String("subject.bin_dir", s.config.Subject.BinDir),
		zap.String("subject.profile", s.config.Subject.Profile),
		zap.Bool("sandbox.keep_dirs", s.config.Sandbox.KeepDirs),
		zap.Int("sandbox.timeout_sec", s.config.Sandbox.TimeoutSec),
		zap.Bool("assert.regex", s.config.Assert.Regex),
		zap.Bool("assert.pretty", s.config.Assert.Pretty),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("clisandbox", "A sandbox harness for testing command-line programs")

	s.registerCreateProjectTool()
	s.registerStageFileTool()
	s.registerRunCommandTool()
	s.registerCheckFileTool()
	s.registerCloseProjectTool()

	return s, nil
}

func (s *MCPServer) registerCreateProjectTool() {
	tool := mcp.Tool{
		Name:        "create_project",
		Description: "Create an isolated sandbox project directory for testing the subject binary",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}

	s.mcpServer.AddTool(tool, s.handleCreateProject)
}

func (s *MCPServer) registerStageFileTool() {
	tool := mcp.Tool{
		Name:        "stage_file",
		Description: "Write a file into a sandbox project, relative to the project directory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": map[string]any{
					"type":        "string",
					"description": "Identifier returned by create_project",
				},
				"path": map[string]any{
					"type":        "string",
					"description": "File path relative to the project directory",
				},
				"contents": map[string]any{
					"type":        "string",
					"description": "File contents",
				},
			},
			Required: []string{"project_id", "path", "contents"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleStageFile)
}

func (s *MCPServer) registerRunCommandTool() {
	tool := mcp.Tool{
		Name:        "run_command",
		Description: "Run the subject binary inside a sandbox project and capture stdout, stderr, and exit code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": map[string]any{
					"type":        "string",
					"description": "Identifier returned by create_project",
				},
				"args": map[string]any{
					"type":        "array",
					"description": "Argument vector for the subject binary",
					"items":       map[string]any{"type": "string"},
				},
				"env": map[string]any{
					"type":        "object",
					"description": "Environment overrides (optional)",
				},
			},
			Required: []string{"project_id", "args"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleRunCommand)
}

func (s *MCPServer) registerCheckFileTool() {
	tool := mcp.Tool{
		Name:        "check_file",
		Description: "Compare a file in a sandbox project against expected contents",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": map[string]any{
					"type":        "string",
					"description": "Identifier returned by create_project",
				},
				"path": map[string]any{
					"type":        "string",
					"description": "File path relative to the project directory",
				},
				"contents": map[string]any{
					"type":        "string",
					"description": "Expected file contents",
				},
			},
			Required: []string{"project_id", "path", "contents"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleCheckFile)
}

func (s *MCPServer) registerCloseProjectTool() {
	tool := mcp.Tool{
		Name:        "close_project",
		Description: "Remove a sandbox project and its directory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": map[string]any{
					"type":        "string",
					"description": "Identifier returned by create_project",
				},
			},
			Required: []string{"project_id"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleCloseProject)
}

func (s *MCPServer) handleCreateProject(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := sandbox.FromConfig(s.config, sandbox.WithLogger(s.logger))
	if err != nil {
		return toolError(fmt.Sprintf("failed to create project: %v", err)), nil
	}

	s.mu.Lock()
	s.projects[proj.ID()] = proj
	s.mu.Unlock()

	s.logger.Info("project created",
		zap.String("project_id", proj.ID()),
		zap.String("dir", proj.Path()))

	return toolText(fmt.Sprintf(`{"project_id":%q,"path":%q}`, proj.ID(), proj.Path())), nil
}

func (s *MCPServer) handleStageFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.project(request)
	if err != nil {
		return nil, err
	}

	path, err := request.RequireString("path")
	if err != nil {
		return nil, fmt.Errorf("path parameter is required: %w", err)
	}

	contents, err := request.RequireString("contents")
	if err != nil {
		return nil, fmt.Errorf("contents parameter is required: %w", err)
	}

	if err := proj.NewFile(path, contents); err != nil {
		return toolError(fmt.Sprintf("failed to stage file: %v", err)), nil
	}

	return toolText(fmt.Sprintf(`{"staged":%q}`, path)), nil
}

func (s *MCPServer) handleRunCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.project(request)
	if err != nil {
		return nil, err
	}

	args, err := stringSliceArg(request, "args")
	if err != nil {
		return nil, err
	}

	cmd := proj.Command(args...)
	for key, value := range stringMapArg(request, "env") {
		cmd.Env(key, value)
	}

	s.logger.Info("running command",
		zap.String("project_id", proj.ID()),
		zap.Strings("args", args))

	result, err := cmd.Run(ctx)
	if err != nil {
		s.logger.Error("command failed to launch",
			zap.Error(err),
			zap.String("project_id", proj.ID()),
			zap.Strings("args", args))
		return toolError(fmt.Sprintf("execution failed: %v", err)), nil
	}

	s.logger.Info("command completed",
		zap.String("project_id", proj.ID()),
		zap.Int("exit_code", result.ExitCode),
		zap.Int("stdout_len", len(result.Stdout)),
		zap.Int("stderr_len", len(result.Stderr)))

	return toolText(fmt.Sprintf(`{"stdout":%q,"stderr":%q,"exit_code":%d}`,
		result.Stdout, result.Stderr, result.ExitCode)), nil
}

func (s *MCPServer) handleCheckFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.project(request)
	if err != nil {
		return nil, err
	}

	path, err := request.RequireString("path")
	if err != nil {
		return nil, fmt.Errorf("path parameter is required: %w", err)
	}

	contents, err := request.RequireString("contents")
	if err != nil {
		return nil, fmt.Errorf("contents parameter is required: %w", err)
	}

	if err := proj.CheckFile(path, contents); err != nil {
		return toolError(err.Error()), nil
	}

	return toolText(fmt.Sprintf(`{"checked":%q}`, path)), nil
}

func (s *MCPServer) handleCloseProject(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return nil, fmt.Errorf("project_id parameter is required: %w", err)
	}

	s.mu.Lock()
	proj, ok := s.projects[projectID]
	delete(s.projects, projectID)
	s.mu.Unlock()

	if !ok {
		return toolError(fmt.Sprintf("unknown project: %s", projectID)), nil
	}

	if err := proj.Close(); err != nil {
		return toolError(fmt.Sprintf("failed to close project: %v", err)), nil
	}

	s.logger.Info("project closed", zap.String("project_id", projectID))

	return toolText(fmt.Sprintf(`{"closed":%q}`, projectID)), nil
}

// project looks up the sandbox referenced by the request's project_id.
func (s *MCPServer) project(request mcp.CallToolRequest) (*sandbox.Project, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return nil, fmt.Errorf("project_id parameter is required: %w", err)
	}

	s.mu.Lock()
	proj, ok := s.projects[projectID]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unknown project: %s", projectID)
	}
	return proj, nil
}

func stringSliceArg(request mcp.CallToolRequest, key string) ([]string, error) {
	raw, ok := request.GetArguments()[key]
	if !ok {
		return nil, fmt.Errorf("%s parameter is required", key)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be an array of strings", key)
		}
		out = append(out, str)
	}
	return out, nil
}

func stringMapArg(request mcp.CallToolRequest, key string) map[string]string {
	out := make(map[string]string)
	raw, ok := request.GetArguments()[key]
	if !ok {
		return out
	}
	entries, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	for k, v := range entries {
		if str, ok := v.(string); ok {
			out[k] = str
		}
	}
	return out
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func toolError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
		IsError: true,
	}
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
