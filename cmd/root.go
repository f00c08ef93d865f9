package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/prefablink/internal/config"
	"github.com/agentic-research/prefablink/internal/workspace"
)

// Version is stamped at build time.
var Version = "dev"

var (
	configPath string
	projectDir string
	logLevel   string
	noColor    bool
	cfg        config.Config
	logger     *slog.Logger
	stderr     io.Writer = os.Stderr
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Path to settings file")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "Project directory (overrides the settings file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

var rootCmd = &cobra.Command{
	Use:           "prefablink",
	Short:         "Fold edits on template instances back into template variants",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		if projectDir != "" {
			cfg.Project = projectDir
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if noColor {
			cfg.Color = false
		}
		level, err := cfg.Level()
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

// openWorkspace opens the configured project. Callers close it.
func openWorkspace() (*workspace.Workspace, error) {
	return workspace.Open(cfg, logger)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
