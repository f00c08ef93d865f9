package mcptool

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/prefablink/internal/asset"
	"github.com/agentic-research/prefablink/internal/config"
	"github.com/agentic-research/prefablink/internal/testutil"
	"github.com/agentic-research/prefablink/internal/workspace"
)

const doorYAML = `version: "1"
guid: door-guid
root:
  id: 1
  name: Door
  components:
    - id: 2
      type: Hinge
      fields:
        - name: angle
          value: 90
`

const doorEditedYAML = `version: "1"
guid: scene-guid
root:
  id: 10
  name: Door
  prefab: {guid: door-guid}
  components:
    - id: 11
      type: Hinge
      fields:
        - name: angle
          value: 120
  children:
    - id: 12
      name: Knob
`

func newTestTools(t *testing.T) *Tools {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "assets/door.prefab", []byte(doorYAML), 0o644))
	require.NoError(t, util.WriteFile(fs, "assets/scene.prefab", []byte(doorEditedYAML), 0o644))

	cat, err := asset.OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Assets = "assets"
	ws := workspace.New(cfg, fs, cat, testutil.NewLogger(t))
	t.Cleanup(func() { _ = ws.Close() })

	tools := &Tools{ws: ws}
	res, err := tools.Index(context.Background(), call(nil))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	return tools
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestCreateVariant(t *testing.T) {
	tools := newTestTools(t)

	res, err := tools.CreateVariant(context.Background(), call(map[string]any{
		"instance": "assets/scene.prefab",
		"out":      "assets/door_wide.prefab",
	}))
	require.NoError(t, err)
	out := text(t, res)
	require.False(t, res.IsError, out)
	assert.Contains(t, out, "wrote assets/door_wide.prefab")
	assert.Contains(t, out, "from template assets/door.prefab")
	assert.Contains(t, out, "+")

	v, err := tools.ws.Find("assets/door_wide.prefab", "Door/Knob")
	require.NoError(t, err)
	assert.Equal(t, "Knob", v.Name)
}

func TestCreateVariantDryRun(t *testing.T) {
	tools := newTestTools(t)

	res, err := tools.CreateVariant(context.Background(), call(map[string]any{
		"instance": "assets/scene.prefab",
		"out":      "assets/door_wide.prefab",
		"dry_run":  true,
	}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "dry run: would write assets/door_wide.prefab")

	_, err = tools.ws.Find("assets/door_wide.prefab", "")
	assert.Error(t, err)
}

func TestCreateVariantErrors(t *testing.T) {
	tools := newTestTools(t)

	res, err := tools.CreateVariant(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.CreateVariant(context.Background(), call(map[string]any{"instance": "assets/door.prefab"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "not part of a template instance")
}

func TestFindNode(t *testing.T) {
	tools := newTestTools(t)

	res, err := tools.FindNode(context.Background(), call(map[string]any{"asset": "assets/scene.prefab"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var info nodeInfo
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &info))
	assert.Equal(t, "Door", info.Path)
	assert.Equal(t, "door-guid", info.Template)
	assert.Equal(t, []componentInfo{{Type: "Hinge", Fields: []string{"angle:value"}}}, info.Components)
	assert.Equal(t, []string{"Knob"}, info.Children)

	res, err = tools.FindNode(context.Background(), call(map[string]any{"asset": "assets/scene.prefab", "path": "Door/Nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "node not found")
}

func TestDependents(t *testing.T) {
	tools := newTestTools(t)

	res, err := tools.Dependents(context.Background(), call(map[string]any{"asset": "assets/door.prefab", "deep": true}))
	require.NoError(t, err)
	assert.Equal(t, "assets/scene.prefab\tscene-guid\n", text(t, res))

	res, err = tools.Dependents(context.Background(), call(map[string]any{"asset": "assets/scene.prefab"}))
	require.NoError(t, err)
	assert.Equal(t, "no dependents", text(t, res))
}

func TestNewServer(t *testing.T) {
	tools := newTestTools(t)
	s := NewServer(tools.ws, "test")
	assert.NotNil(t, s)
}
