package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage: rpgdecrypt <game_dir>")

type runFlags struct {
	mirror   bool
	workers  int
	dryRun   bool
	logLevel string
	quiet    bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "rpgdecrypt <game_dir>",
		Short:         "Decrypt RPG Maker MV/MZ game assets",
		Long: `Decrypt the RPG Maker MV/MZ assets of the game in <game_dir>.

A game directory named like a subcommand ("inspect", "config") is taken as
that subcommand. Pass it as a path instead, e.g. rpgdecrypt ./inspect.`,
		Args:          requireGameDir,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecrypt(cmd, ctx, args[0], flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVar(&flags.mirror, "mirror", false, "Write a decrypted copy beside the game instead of replacing files")
	rootCmd.Flags().IntVar(&flags.workers, "workers", 0, "Number of parallel workers (0 uses one per CPU)")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Plan the run without writing anything")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level")
	rootCmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print the summary")

	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func requireGameDir(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return nil
}
