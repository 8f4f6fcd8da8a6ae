package build

import (
	"context"

	"devmcp-agent/src/logger"
	"devmcp-agent/src/sanitize"
)

const (
	analysisSystemPrompt = "You are a Java build expert."
	analysisInstruction  = "A Maven/Gradle build just failed. Explain the root cause " +
		"and suggest a concrete fix in 3-4 sentences.\n\nBuild output:\n"
	analysisMaxTokens = 500
)

// Placeholders returned instead of an analysis.
const (
	NoExchangeText     = "(sampling unavailable — no exchange)"
	NotSupportedText   = "(sampling not supported by this client)"
	NonTextContentText = "(sampling returned non-text content)"
	unavailablePrefix  = "(sampling unavailable — "
	unavailableSuffix  = ")"
)

// Analyzer asks the client to explain a failed build.
type Analyzer struct {
	logger logger.Logger
}

// NewAnalyzer creates a failure analyzer.
func NewAnalyzer(log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Analyzer{logger: log}
}

// Analyze returns the delegate's explanation of output, or a placeholder describing
// why none is available. It makes at most one sampling request and never fails.
func (a *Analyzer) Analyze(ctx context.Context, delegate Delegate, output string) string {
	if delegate == nil {
		return NoExchangeText
	}
	if !delegate.SupportsSampling() {
		return NotSupportedText
	}

	result, err := delegate.CreateMessage(ctx, SamplingRequest{
		SystemPrompt: analysisSystemPrompt,
		UserMessage:  analysisInstruction + sanitize.ForPrompt(output),
		MaxTokens:    analysisMaxTokens,
	})
	if err != nil {
		a.logger.Debug("[Analyzer] Sampling failed: %v", err)
		return unavailablePrefix + err.Error() + unavailableSuffix
	}
	if result == nil || result.ContentType != ContentTypeText {
		return NonTextContentText
	}
	return result.Text
}
