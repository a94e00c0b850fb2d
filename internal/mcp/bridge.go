package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/goclaw/internal/tools"
)

// BridgeTool adapts a single tool discovered on a remote MCP server into the
// gateway's own tools.Tool interface, so the agent loop can dispatch it like
// any built-in tool. A configured tool prefix, if any, is prepended to the
// exposed name; without one the server's own tool name is exposed as is,
// and connectServer skips a tool whose name is already registered.
type BridgeTool struct {
	serverName string
	origName   string
	exposed    string
	desc       string
	schema     map[string]interface{}

	client     *mcpclient.Client
	timeout    time.Duration
	connected  *atomic.Bool
}

// NewBridgeTool wraps a tool discovered via ListTools on an MCP server.
// connected is shared with the owning serverState so Execute can fail fast
// while the connection is down instead of blocking on a dead transport.
func NewBridgeTool(serverName string, mcpTool mcpgo.Tool, client *mcpclient.Client, toolPrefix string, timeoutSec int, connected *atomic.Bool) *BridgeTool {
	exposed := mcpTool.Name
	if toolPrefix != "" {
		exposed = toolPrefix + "_" + mcpTool.Name
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": mcpTool.InputSchema.Properties,
	}
	if len(mcpTool.InputSchema.Required) > 0 {
		schema["required"] = mcpTool.InputSchema.Required
	}
	return &BridgeTool{
		serverName: serverName,
		origName:   mcpTool.Name,
		exposed:    sanitizeToolName(exposed),
		desc:       mcpTool.Description,
		schema:     schema,
		client:     client,
		timeout:    time.Duration(timeoutSec) * time.Second,
		connected:  connected,
	}
}

// sanitizeToolName keeps exposed tool names within the character set LLM
// providers accept for function names.
func sanitizeToolName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (b *BridgeTool) Name() string        { return b.exposed }
func (b *BridgeTool) Description() string { return fmt.Sprintf("[mcp:%s] %s", b.serverName, b.desc) }
func (b *BridgeTool) Parameters() map[string]interface{} {
	return b.schema
}

// OriginalName returns the tool's name as published by the remote server,
// before any configured prefix — used for allow/deny-list matching in
// filterTools, which is expressed in terms of the server's own tool names.
func (b *BridgeTool) OriginalName() string {
	return b.origName
}

func (b *BridgeTool) Execute(ctx context.Context, args map[string]interface{}) *tools.Result {
	if b.connected != nil && !b.connected.Load() {
		return tools.ErrorResult(fmt.Sprintf("mcp server %q is disconnected", b.serverName))
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if b.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	req := mcpgo.CallToolRequest{}
	req.Params.Name = b.origName
	req.Params.Arguments = args

	result, err := b.client.CallTool(callCtx, req)
	if err != nil {
		return tools.ErrorResult(fmt.Sprintf("mcp tool %q failed: %v", b.exposed, err))
	}

	text := flattenMCPContent(result)
	if result.IsError {
		return tools.ErrorResult(text)
	}
	return tools.NewResult(text)
}

// flattenMCPContent joins every text block in a CallToolResult into one
// string. Non-text content (images, embedded resources) is rendered as a
// placeholder — the agent loop has no channel to forward raw bytes here.
func flattenMCPContent(result *mcpgo.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, c := range result.Content {
		switch v := c.(type) {
		case mcpgo.TextContent:
			parts = append(parts, v.Text)
		case mcpgo.ImageContent:
			parts = append(parts, fmt.Sprintf("[image content: %s]", v.MIMEType))
		case mcpgo.EmbeddedResource:
			parts = append(parts, "[embedded resource]")
		default:
			parts = append(parts, fmt.Sprintf("[unsupported mcp content: %T]", c))
		}
	}
	return strings.Join(parts, "\n")
}
