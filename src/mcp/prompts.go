package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(
		mcp.NewPrompt("explain-build-error",
			mcp.WithPromptDescription("Generates a prompt asking the LLM to explain a Maven/Gradle build error and suggest a concrete fix. Pass the full error text as the 'error' argument."),
			mcp.WithArgument("error",
				mcp.ArgumentDescription("Full build error text (stdout/stderr)"),
				mcp.RequiredArgument(),
			),
		),
		handleExplainBuildError,
	)

	s.mcpServer.AddPrompt(
		mcp.NewPrompt("code-review",
			mcp.WithPromptDescription("Generates a code review prompt for Java source code. Checks for correctness, Spring best practices, readability, and thread safety."),
			mcp.WithArgument("code",
				mcp.ArgumentDescription("Java source code to review"),
				mcp.RequiredArgument(),
			),
		),
		handleCodeReview,
	)

	s.mcpServer.AddPrompt(
		mcp.NewPrompt("commit-message",
			mcp.WithPromptDescription("Generates a conventional commit message from a git diff. Uses feat/fix/refactor/test/docs/chore types with optional scope."),
			mcp.WithArgument("diff",
				mcp.ArgumentDescription("Output of `git diff` or `git diff --staged`"),
				mcp.RequiredArgument(),
			),
		),
		handleCommitMessage,
	)
}

func handleExplainBuildError(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt("Explain build error",
		"You are a Java and Maven/Gradle build expert. "+
			"A build just failed with the following output. "+
			"Explain the root cause clearly and provide a concrete fix "+
			"(code change or config update).\n\n"+
			"Build error:\n"+request.Params.Arguments["error"],
	), nil
}

func handleCodeReview(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt("Java code review",
		"Review the following Java code. Check for:\n"+
			"- Correctness and potential bugs\n"+
			"- Spring Boot best practices\n"+
			"- Readability and naming conventions\n"+
			"- Missing null checks or error handling\n"+
			"- Thread safety issues\n\n"+
			"Code:\n```java\n"+request.Params.Arguments["code"]+"\n```",
	), nil
}

func handleCommitMessage(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt("Generate commit message",
		"Write a conventional commit message for this git diff.\n\n"+
			"Format: <type>(<scope>): <short description under 72 chars>\n"+
			"Types: feat | fix | refactor | test | docs | chore\n"+
			"Scope: optional, e.g. tools, resources, prompts, config\n\n"+
			"Add a blank line and a brief body if the change is non-obvious.\n\n"+
			"Diff:\n```diff\n"+request.Params.Arguments["diff"]+"\n```",
	), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
