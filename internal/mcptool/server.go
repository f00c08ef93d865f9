// Package mcptool exposes a workspace over the Model Context Protocol so that
// agents can create variants and inspect assets.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/prefablink/internal/report"
	"github.com/agentic-research/prefablink/internal/scene"
	"github.com/agentic-research/prefablink/internal/workspace"
)

// Tools holds the tool handlers for one workspace.
type Tools struct {
	ws *workspace.Workspace
}

// NewServer builds an MCP server with every tool registered.
func NewServer(ws *workspace.Workspace, version string) *server.MCPServer {
	s := server.NewMCPServer("prefablink", version, server.WithToolCapabilities(false))
	t := &Tools{ws: ws}

	s.AddTool(mcp.NewTool("create_variant",
		mcp.WithDescription("Create a template variant from an edited template instance and save it."),
		mcp.WithString("instance", mcp.Required(), mcp.Description("Asset path holding the edited instance")),
		mcp.WithString("node", mcp.Description("Node path of the instance inside the asset; the root when omitted")),
		mcp.WithString("template", mcp.Description("Template asset path; taken from the instance link when omitted")),
		mcp.WithString("out", mcp.Description("Asset path to write the variant to")),
		mcp.WithBoolean("replace", mcp.Description("Overwrite the instance asset, keeping its GUID")),
		mcp.WithBoolean("dry_run", mcp.Description("Report the diff without writing")),
	), t.CreateVariant)

	s.AddTool(mcp.NewTool("find_node",
		mcp.WithDescription("Resolve a slash-separated node path in an asset and describe the node."),
		mcp.WithString("asset", mcp.Required(), mcp.Description("Asset path")),
		mcp.WithString("path", mcp.Description("Node path, e.g. Root/Body/Wheel; the root when omitted")),
	), t.FindNode)

	s.AddTool(mcp.NewTool("dependents",
		mcp.WithDescription("List assets that nest the given template."),
		mcp.WithString("asset", mcp.Required(), mcp.Description("Template asset path")),
		mcp.WithBoolean("deep", mcp.Description("Follow nesting transitively")),
	), t.Dependents)

	s.AddTool(mcp.NewTool("index",
		mcp.WithDescription("Rescan the project and refresh the asset catalog."),
	), t.Index)

	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func Serve(ws *workspace.Workspace, version string) error {
	return server.ServeStdio(NewServer(ws, version))
}

// CreateVariant handles create_variant.
func (t *Tools) CreateVariant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instance, err := req.RequireString("instance")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.ws.Link(workspace.LinkRequest{
		Instance: instance,
		Node:     req.GetString("node", ""),
		Template: req.GetString("template", ""),
		Out:      req.GetString("out", ""),
		Replace:  req.GetBool("replace", false),
		DryRun:   req.GetBool("dry_run", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	switch {
	case res.Written:
		fmt.Fprintf(&b, "wrote %s (guid %s) from template %s\n", res.Path, res.GUID, res.Template)
	case res.Path != "":
		fmt.Fprintf(&b, "dry run: would write %s (guid %s) from template %s\n", res.Path, res.GUID, res.Template)
	default:
		fmt.Fprintf(&b, "variant of %s computed; no destination given\n", res.Template)
	}
	lines := report.Lines(res.Before, res.After)
	ins, del := report.Stat(lines)
	fmt.Fprintf(&b, "%d lines added, %d removed\n", ins, del)
	if err := report.Write(&b, lines, report.Options{Context: 3}); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(b.String()), nil
}

type nodeInfo struct {
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	Tag        string          `json:"tag,omitempty"`
	Layer      int             `json:"layer,omitempty"`
	Template   string          `json:"template,omitempty"`
	Overrides  int             `json:"overrides,omitempty"`
	Components []componentInfo `json:"components,omitempty"`
	Children   []string        `json:"children,omitempty"`
}

type componentInfo struct {
	Type   string   `json:"type"`
	Fields []string `json:"fields,omitempty"`
}

func describe(n *scene.Node) nodeInfo {
	info := nodeInfo{Name: n.Name, Path: n.Path(), Tag: n.Tag, Layer: n.Layer}
	if n.Link != nil {
		info.Template = n.Link.GUID
		info.Overrides = len(n.Link.Overrides)
	}
	for _, c := range n.Components {
		ci := componentInfo{Type: c.Type}
		for _, f := range c.Fields {
			ci.Fields = append(ci.Fields, f.Name+":"+f.Kind.String())
		}
		info.Components = append(info.Components, ci)
	}
	for _, c := range n.Children {
		info.Children = append(info.Children, c.Name)
	}
	return info
}

// FindNode handles find_node.
func (t *Tools) FindNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("asset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := t.ws.Find(path, req.GetString("path", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(describe(n), "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Dependents handles dependents.
func (t *Tools) Dependents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("asset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deps, err := t.ws.Dependents(path, req.GetBool("deep", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(deps) == 0 {
		return mcp.NewToolResultText("no dependents"), nil
	}
	var b strings.Builder
	for _, d := range deps {
		fmt.Fprintf(&b, "%s\t%s\n", d.Path, d.GUID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// Index handles index.
func (t *Tools) Index(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.ws.Index()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("indexed %d, skipped %d, pruned %d", stats.Indexed, stats.Skipped, stats.Pruned)), nil
}
