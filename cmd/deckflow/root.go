package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/deckflow/pkg/deckflow/config"
)

// rootFlags holds flags shared by every subcommand.
type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "deckflow",
		Short:         "Turn slide decks into flashcards and knowledge bases",
		Long:          "deckflow runs slide decks through a graph-based extraction pipeline:\nclaims per slide region, verified and repaired, written into flashcards\nor assembled into a markdown knowledge base.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (yaml or json)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newRunCmd(flags),
		newResumeCmd(flags),
		newChunksCmd(flags),
	)
	return cmd
}

// loadConfig reads the configured file, or returns an empty config when
// none was given.
func (f *rootFlags) loadConfig() (config.Config, error) {
	if f.configPath == "" {
		return config.New(nil), nil
	}
	return config.FromFile(f.configPath)
}

func (f *rootFlags) logger() *slog.Logger {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
