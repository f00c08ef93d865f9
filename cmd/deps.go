package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depsDeep bool

func init() {
	depsCmd.Flags().BoolVarP(&depsDeep, "deep", "r", false, "Include assets that nest the template indirectly")
	rootCmd.AddCommand(depsCmd)
}

var depsCmd = &cobra.Command{
	Use:   "deps <template-asset>",
	Short: "List assets that nest a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer func() { _ = ws.Close() }()

		deps, err := ws.Dependents(args[0], depsDeep)
		if err != nil {
			return err
		}
		for _, d := range deps {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.Path, d.GUID)
		}
		return nil
	},
}
