package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"devmcp-agent/src/build"
	"devmcp-agent/src/notify"
)

// loggerName identifies this server in notifications/message.
const loggerName = "devmcp"

// sessionObserver forwards build events to the client that called run_build.
// Progress is only sent when the request carried a progress token.
type sessionObserver struct {
	server        *server.MCPServer
	progressToken mcp.ProgressToken
}

func newSessionObserver(s *server.MCPServer, request mcp.CallToolRequest) *sessionObserver {
	var token mcp.ProgressToken
	if request.Params.Meta != nil {
		token = request.Params.Meta.ProgressToken
	}
	return &sessionObserver{server: s, progressToken: token}
}

func (o *sessionObserver) Progress(ctx context.Context, p notify.Progress) error {
	if o.progressToken == nil {
		return nil
	}
	return o.server.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
		"progressToken": o.progressToken,
		"progress":      p.Fraction,
		"total":         p.Total,
		"message":       p.Label,
	})
}

func (o *sessionObserver) Log(ctx context.Context, entry notify.LogEntry) error {
	return o.server.SendLogMessageToClient(ctx,
		mcp.NewLoggingMessageNotification(mcp.LoggingLevelInfo, loggerName, entry.Message))
}

// sessionDelegate asks the calling client to generate text via sampling/createMessage.
type sessionDelegate struct {
	server   *server.MCPServer
	sampling bool
}

// newSessionDelegate returns nil when ctx carries no client session.
func newSessionDelegate(ctx context.Context, s *server.MCPServer) build.Delegate {
	session := server.ClientSessionFromContext(ctx)
	if session == nil {
		return nil
	}
	d := &sessionDelegate{server: s}
	if withInfo, ok := session.(server.SessionWithClientInfo); ok {
		d.sampling = withInfo.GetClientCapabilities().Sampling != nil
	}
	return d
}

func (d *sessionDelegate) SupportsSampling() bool {
	return d.sampling
}

func (d *sessionDelegate) CreateMessage(ctx context.Context, req build.SamplingRequest) (*build.SamplingResult, error) {
	result, err := d.server.RequestSampling(ctx, mcp.CreateMessageRequest{
		CreateMessageParams: mcp.CreateMessageParams{
			Messages: []mcp.SamplingMessage{{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(req.UserMessage),
			}},
			SystemPrompt: req.SystemPrompt,
			MaxTokens:    req.MaxTokens,
		},
	})
	if err != nil {
		return nil, err
	}

	switch content := result.Content.(type) {
	case mcp.TextContent:
		return &build.SamplingResult{ContentType: build.ContentTypeText, Text: content.Text}, nil
	case *mcp.TextContent:
		return &build.SamplingResult{ContentType: build.ContentTypeText, Text: content.Text}, nil
	}
	return &build.SamplingResult{ContentType: "other"}, nil
}
