package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "morpion",
		Short:         "Two-player tic-tac-toe room server",
		Long:          "morpion hosts two-player 3x3 tic-tac-toe rooms over HTTP and websockets, with per-player stats and an optional Redis event mirror.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var configPath string
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the yaml config file (environment only when empty)")

	rootCmd.AddCommand(
		newServeCmd(&configPath),
		newWatchCmd(&configPath),
		newVersionCmd(),
	)
	return rootCmd
}

const version = "v0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
