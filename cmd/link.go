package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/prefablink/internal/report"
	"github.com/agentic-research/prefablink/internal/workspace"
)

var linkReq workspace.LinkRequest

func init() {
	linkCmd.Flags().StringVarP(&linkReq.Node, "node", "n", "", "Node path of the instance inside the asset (default: root)")
	linkCmd.Flags().StringVarP(&linkReq.Template, "template", "t", "", "Template asset path (default: from the instance link)")
	linkCmd.Flags().StringVarP(&linkReq.Out, "out", "o", "", "Write the variant to this asset path")
	linkCmd.Flags().BoolVar(&linkReq.Replace, "replace", false, "Overwrite the instance asset, keeping its GUID")
	linkCmd.Flags().BoolVar(&linkReq.DryRun, "dry-run", false, "Print the diff without writing")
	linkCmd.MarkFlagsMutuallyExclusive("replace", "out")
	rootCmd.AddCommand(linkCmd)
}

var linkCmd = &cobra.Command{
	Use:   "link <instance-asset>",
	Short: "Create a template variant from an edited instance",
	Long: `Instantiate the template the instance was created from, fold the instance's
edits onto it (extra trailing children, changed and extra components,
internal references) and write the result as a variant asset.

Without --out or --replace the variant is only diffed against the instance.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer func() { _ = ws.Close() }()

		req := linkReq
		req.Instance = args[0]
		res, err := ws.Link(req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		lines := report.Lines(res.Before, res.After)
		if res.Written {
			ins, del := report.Stat(lines)
			fmt.Fprintf(out, "wrote %s (guid %s, template %s): +%d -%d\n", res.Path, res.GUID, res.Template, ins, del)
			return nil
		}
		return report.Write(out, lines, report.Options{Color: cfg.Color, Context: 3})
	},
}
