package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doorAsset = `version: "1"
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

const sceneAsset = `version: "1"
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

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "door.prefab"), []byte(doorAsset), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "scene.prefab"), []byte(sceneAsset), 0o644))
	return dir
}

// run executes the root command with fresh flag state.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stderr = io.Discard
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestLinkCommand(t *testing.T) {
	dir := setupProject(t)

	out, err := run(t, "index", "-p", dir)
	require.NoError(t, err)
	assert.Equal(t, "indexed 2 assets (0 skipped, 0 pruned)\n", out)

	out, err = run(t, "link", "-p", dir, "assets/scene.prefab", "--out", "assets/door_knob.prefab")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote assets/door_knob.prefab")
	assert.Contains(t, out, "template assets/door.prefab")

	data, err := os.ReadFile(filepath.Join(dir, "assets", "door_knob.prefab"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Knob")
	assert.Contains(t, string(data), "value: 120")

	out, err = run(t, "deps", "-p", dir, "assets/door.prefab")
	require.NoError(t, err)
	assert.Contains(t, out, "assets/door_knob.prefab\t")
	assert.Contains(t, out, "assets/scene.prefab\tscene-guid")

	out, err = run(t, "find", "-p", dir, "assets/door_knob.prefab")
	require.NoError(t, err)
	assert.Equal(t, "Door [template door-guid, 0 overrides] <Hinge>\n  Knob\n", out)
}

func TestLinkDryRunCommand(t *testing.T) {
	dir := setupProject(t)
	_, err := run(t, "index", "-p", dir)
	require.NoError(t, err)

	out, err := run(t, "link", "-p", dir, "--no-color", "--dry-run", "assets/scene.prefab")
	require.NoError(t, err)
	assert.Contains(t, out, "-  id: 10")
	assert.Contains(t, out, "+  id: 1")
	assert.NotContains(t, out, "\x1b[")

	_, err = os.Stat(filepath.Join(dir, "assets", "scene.prefab"))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "assets", "scene.prefab"))
	require.NoError(t, err)
	assert.Equal(t, sceneAsset, string(data), "dry run leaves the instance alone")
}

func TestLinkCommandErrors(t *testing.T) {
	dir := setupProject(t)
	_, err := run(t, "index", "-p", dir)
	require.NoError(t, err)

	_, err = run(t, "link", "-p", dir, "assets/scene.prefab", "--out", "a.prefab", "--replace")
	assert.Error(t, err)

	_, err = run(t, "link", "-p", dir, "assets/missing.prefab")
	assert.ErrorContains(t, err, "missing.prefab")

	_, err = run(t, "find", "-p", dir, "assets/scene.prefab", "Door/Nope")
	assert.ErrorContains(t, err, "node not found")

	_, err = run(t, "index", "-p", dir, "--log-level", "loud")
	assert.ErrorContains(t, err, "log_level")
}
