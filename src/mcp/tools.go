package mcp

import (
	"context"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers all available tools.
func (s *Server) registerTools() {
	readFileTool := mcp.NewTool("read_file",
		mcp.WithDescription("Reads any text file from the filesystem and returns its content. Provide the absolute file path. Useful for inspecting source files, config files, build scripts, or logs."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the file to read"),
		),
	)

	runBuildTool := mcp.NewTool("run_build",
		mcp.WithDescription("Runs a Maven or Gradle build in the specified project directory. Emits progress notifications at each build phase. On build failure, requests an AI explanation via MCP sampling. Stores the full output in the project://build-log resource."),
		mcp.WithString("goals",
			mcp.Required(),
			mcp.Description("Maven goals or Gradle tasks, e.g. 'clean test' or 'build'"),
		),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Absolute path to the project directory to run the build in"),
		),
	)

	suggestTool := mcp.NewTool("suggest_build_errors",
		mcp.WithDescription("Suggests well-known Maven/Gradle error strings starting with the given prefix. Use it to fill the 'error' argument of the explain-build-error prompt."),
		mcp.WithString("prefix",
			mcp.Description("Case-insensitive prefix to match (empty lists everything)"),
		),
	)

	s.mcpServer.AddTool(readFileTool, s.handleReadFile)
	s.mcpServer.AddTool(runBuildTool, s.handleRunBuild)
	s.mcpServer.AddTool(suggestTool, s.handleSuggestBuildErrors)
}

// handleReadFile returns the file content, or the read error as text.
func (s *Server) handleReadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("file_path", "")
	if path == "" {
		return mcp.NewToolResultText("Error reading file: file_path parameter is required"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultText("Error reading file: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleRunBuild runs a build, streaming progress and log notifications to the
// calling session and asking it for an explanation when the build fails.
func (s *Server) handleRunBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goals, err := request.RequireString("goals")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectPath, err := request.RequireString("project_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	observer := newSessionObserver(s.mcpServer, request)
	delegate := newSessionDelegate(ctx, s.mcpServer)

	result := s.orchestrator.Run(ctx, goals, projectPath, observer, delegate)
	return mcp.NewToolResultText(result), nil
}

// knownBuildErrors are suggested for the explain-build-error prompt.
var knownBuildErrors = []string{
	"ClassNotFoundException",
	"NoSuchBeanDefinitionException",
	"BeanCreationException",
	"UnsatisfiedDependencyException",
	"NullPointerException",
	"COMPILATION ERROR",
	"BUILD FAILURE",
	"package does not exist",
	"cannot find symbol",
	"Failed to execute goal",
}

// SuggestBuildErrors returns the known build errors starting with prefix, ignoring case.
func SuggestBuildErrors(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for _, e := range knownBuildErrors {
		if strings.HasPrefix(strings.ToLower(e), prefix) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Server) handleSuggestBuildErrors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	suggestions := SuggestBuildErrors(request.GetString("prefix", ""))
	return mcp.NewToolResultText(strings.Join(suggestions, "\n")), nil
}
