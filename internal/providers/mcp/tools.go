package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/chatty/internal/providers/tools"
	"github.com/sandevgo/chatty/pkg/log"
)

// Connector loads mcp.json once at startup, connects every configured server
// and exposes the remote tools through the native tool registry.
type Connector struct {
	clients map[string]*client.Client
}

func NewConnector() *Connector {
	return &Connector{clients: make(map[string]*client.Client)}
}

// RegisterAll connects to each server in the config and registers its tools.
// A server that fails to connect is logged and skipped; external servers are
// optional extras, never a startup requirement.
func (c *Connector) RegisterAll(ctx context.Context, cfg *Config, registry *tools.Registry) {
	logger := log.FromCtx(ctx)

	for name, serverCfg := range cfg.MCPServers {
		cli, err := connect(ctx, serverCfg)
		if err != nil {
			logger.Warn().Err(err).Str("server", name).Msg("skipping mcp server")
			continue
		}
		c.clients[name] = cli

		list, err := cli.ListTools(ctx, mcpproto.ListToolsRequest{})
		if err != nil {
			logger.Warn().Err(err).Str("server", name).Msg("failed to list mcp tools")
			continue
		}

		for _, t := range list.Tools {
			schema, err := json.Marshal(t.InputSchema)
			if err != nil {
				logger.Warn().Err(err).Str("tool", t.Name).Msg("failed to marshal tool schema")
				continue
			}
			registry.Register(ctx, &remoteTool{
				client:      cli,
				name:        t.Name,
				description: t.Description,
				schema:      schema,
			})
		}
	}
}

func (c *Connector) Close() error {
	var firstErr error
	for name, cli := range c.clients {
		if err := cli.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close mcp server %s: %w", name, err)
		}
	}
	return firstErr
}

// remoteTool adapts one MCP server tool to the native Tool interface.
type remoteTool struct {
	client      *client.Client
	name        string
	description string
	schema      json.RawMessage
}

func (t *remoteTool) Name() string                { return t.name }
func (t *remoteTool) Description() string         { return t.description }
func (t *remoteTool) Parameters() json.RawMessage { return t.schema }

func (t *remoteTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var arguments map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}

	req := mcpproto.CallToolRequest{}
	req.Params.Name = t.name
	req.Params.Arguments = arguments

	result, err := t.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("mcp call failed: %w", err)
	}

	var parts []string
	for _, content := range result.Content {
		if text, ok := mcpproto.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}
	out := strings.Join(parts, "\n")

	if result.IsError {
		return "", fmt.Errorf("%s", out)
	}
	return out, nil
}
