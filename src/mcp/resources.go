package mcp

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
)

// Resource URIs.
const (
	BuildLogURI     = "project://build-log"
	PomURI          = "project://pom.xml"
	ReadmeURI       = "project://readme"
	fileTemplateURI = "project://file/{name}"
)

const (
	pomPlaceholder    = "<!-- pom.xml not found in working directory -->"
	readmePlaceholder = "# Dev MCP Server\n\nREADME.md not found in working directory."
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(BuildLogURI, "Build Log",
			mcp.WithResourceDescription("Output of the most recent run_build invocation. Includes stdout/stderr and, on failure, an AI-generated error analysis from MCP sampling. Run run_build first to populate this resource."),
			mcp.WithMIMEType("text/plain"),
		),
		s.handleBuildLog,
	)

	s.mcpServer.AddResource(
		mcp.NewResource(PomURI, "Maven POM",
			mcp.WithResourceDescription("The project's pom.xml: dependencies, plugins and build config."),
			mcp.WithMIMEType("application/xml"),
		),
		s.fileResource("pom.xml", pomPlaceholder, "application/xml"),
	)

	s.mcpServer.AddResource(
		mcp.NewResource(ReadmeURI, "README",
			mcp.WithResourceDescription("The project README.md."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.fileResource("README.md", readmePlaceholder, "text/markdown"),
	)

	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(fileTemplateURI, "Project File",
			mcp.WithTemplateDescription("Reads any file from the working directory by relative name. Example: 'README.md' or 'build.gradle'."),
			mcp.WithTemplateMIMEType("text/plain"),
		),
		s.handleProjectFile,
	)
}

func (s *Server) handleBuildLog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return textContents(request.Params.URI, "text/plain", s.results.Get()), nil
}

func (s *Server) fileResource(name, placeholder, mimeType string) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return textContents(request.Params.URI, mimeType, s.readOrPlaceholder(name, placeholder)), nil
	}
}

func (s *Server) handleProjectFile(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name := templateArg(request.Params.Arguments, "name")
	return textContents(request.Params.URI, "text/plain", s.readOrPlaceholder(name, "File not found: "+name)), nil
}

// readOrPlaceholder reads name relative to the working directory.
func (s *Server) readOrPlaceholder(name, placeholder string) string {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.workDir, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("[MCP] Resource read failed for %q: %v", name, err)
		return placeholder
	}
	return string(data)
}

// templateArg extracts a matched URI template variable.
func templateArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func textContents(uri, mimeType, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		},
	}
}
