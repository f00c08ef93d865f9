package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentic-research/prefablink/internal/scene"
)

func init() {
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find <asset> [node-path]",
	Short: "Resolve a node path in an asset and print its subtree",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer func() { _ = ws.Close() }()

		var nodePath string
		if len(args) == 2 {
			nodePath = args[1]
		}
		n, err := ws.Find(args[0], nodePath)
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), n, "")
		return nil
	},
}

func printTree(w io.Writer, n *scene.Node, indent string) {
	line := indent + n.Name
	if n.Link != nil {
		line += fmt.Sprintf(" [template %s, %d overrides]", n.Link.GUID, len(n.Link.Overrides))
	}
	for _, c := range n.Components {
		line += " <" + c.Type + ">"
	}
	fmt.Fprintln(w, line)
	for _, c := range n.Children {
		printTree(w, c, indent+"  ")
	}
}
