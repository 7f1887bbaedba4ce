// Command pinyinfun manages the vocabulary library and plays the games from
// the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "pinyinfun",
		Short:         "Pinyin learning games and vocabulary library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to YAML config (default $CONFIG_PATH or ./pinyinfun.yaml)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to SQLite database, overrides config")

	root.AddCommand(
		newIngestCmd(flags),
		newVocabCmd(flags),
		newFilesCmd(flags),
		newSampleCmd(flags),
		newPlayCmd(flags),
		newDrillCmd(flags),
		newScoreCmd(flags),
	)
	return root
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(a *app) error) error {
	a, err := openApp(cmd.Context(), flags.configPath, flags.dbPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
