package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func readRequest(uri string, args map[string]any) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: uri, Arguments: args}}
}

func contentsText(t *testing.T, contents []mcp.ResourceContents) string {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents is %T, want mcp.TextResourceContents", contents[0])
	}
	return text.Text
}

func TestBuildLogResource(t *testing.T) {
	srv, results := newTestServer(t)

	contents, err := srv.handleBuildLog(context.Background(), readRequest(BuildLogURI, nil))
	if err != nil {
		t.Fatalf("handleBuildLog() error = %v", err)
	}
	if got := contentsText(t, contents); got != "No build has been run yet." {
		t.Errorf("build log = %q, want sentinel", got)
	}

	results.Set("[INFO] BUILD SUCCESS\n")
	contents, _ = srv.handleBuildLog(context.Background(), readRequest(BuildLogURI, nil))
	if got := contentsText(t, contents); got != "[INFO] BUILD SUCCESS\n" {
		t.Errorf("build log = %q", got)
	}
}

func TestProjectFileResources(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	pom, _ := srv.fileResource("pom.xml", pomPlaceholder, "application/xml")(ctx, readRequest(PomURI, nil))
	if got := contentsText(t, pom); got != "<!-- pom.xml not found in working directory -->" {
		t.Errorf("missing pom = %q", got)
	}
	readme, _ := srv.fileResource("README.md", readmePlaceholder, "text/markdown")(ctx, readRequest(ReadmeURI, nil))
	if got := contentsText(t, readme); got != "# Dev MCP Server\n\nREADME.md not found in working directory." {
		t.Errorf("missing readme = %q", got)
	}

	if err := os.WriteFile(filepath.Join(srv.workDir, "pom.xml"), []byte("<project/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	pom, _ = srv.fileResource("pom.xml", pomPlaceholder, "application/xml")(ctx, readRequest(PomURI, nil))
	if got := contentsText(t, pom); got != "<project/>" {
		t.Errorf("pom = %q", got)
	}
}

func TestProjectFileTemplate(t *testing.T) {
	srv, _ := newTestServer(t)
	if err := os.WriteFile(filepath.Join(srv.workDir, "build.gradle"), []byte("plugins { id 'java' }"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "matched slice", args: map[string]any{"name": []string{"build.gradle"}}, want: "plugins { id 'java' }"},
		{name: "matched string", args: map[string]any{"name": "build.gradle"}, want: "plugins { id 'java' }"},
		{name: "missing file", args: map[string]any{"name": []string{"settings.gradle"}}, want: "File not found: settings.gradle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents, err := srv.handleProjectFile(context.Background(), readRequest("project://file/x", tt.args))
			if err != nil {
				t.Fatalf("handleProjectFile() error = %v", err)
			}
			if got := contentsText(t, contents); got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}
