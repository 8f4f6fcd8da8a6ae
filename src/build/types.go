// Package build resolves, runs and reports on project builds.
package build

import (
	"context"
	"strings"
)

// Command is a resolved build invocation. It is not modified after Resolve returns it.
type Command struct {
	// Args holds the program followed by its arguments.
	Args []string
	// Dir is the working directory the process runs in.
	Dir string
}

// String renders the command the way it is reported in build logs.
func (c *Command) String() string {
	return strings.Join(c.Args, " ")
}

// Outcome is the result of a finished process.
type Outcome struct {
	ExitCode int
	// Output is every line the process printed, each followed by "\n".
	Output string
}

// Succeeded reports whether the process exited with code zero.
func (o *Outcome) Succeeded() bool {
	return o.ExitCode == 0
}

// SamplingRequest is a single text-generation request sent to the client.
type SamplingRequest struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
}

// SamplingResult is the delegate's answer. ContentType is "text" when Text is usable.
type SamplingResult struct {
	ContentType string
	Text        string
}

// ContentTypeText marks a sampling result carrying plain text.
const ContentTypeText = "text"

// Delegate is the requesting client, able to generate text on the server's behalf.
type Delegate interface {
	// SupportsSampling reports whether the client advertised the sampling capability.
	SupportsSampling() bool
	CreateMessage(ctx context.Context, req SamplingRequest) (*SamplingResult, error)
}
