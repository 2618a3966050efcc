package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
	"github.com/randalmurphal/deckflow/pkg/deckflow/checkpoint"
	"github.com/randalmurphal/deckflow/pkg/deckflow/config"
	"github.com/randalmurphal/deckflow/pkg/deckflow/limit"
	"github.com/randalmurphal/deckflow/pkg/model"
	"github.com/randalmurphal/deckflow/pkg/pipeline"
)

type runFlags struct {
	jobID     string
	mode      string
	fast      bool
	storePath string
	output    string
	name      string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <deck.pdf>",
		Short: "Process a slide deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			pdfPath := args[0]
			if _, err := os.Stat(pdfPath); err != nil {
				return fmt.Errorf("deck %s: %w", pdfPath, err)
			}

			name := flags.name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
			}
			jobID := flags.jobID
			if jobID == "" {
				jobID = uuid.New().String()
			}

			runner, store, err := buildRunner(root, cfg, flags.mode, flags.storePath)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			root.logger().Info("job starting", "job_id", jobID, "deck", pdfPath, "mode", flags.mode)

			final, err := runner.Run(cmd.Context(), jobID, pipeline.State{
				Document: deck.Document{Name: name, PDFPath: pdfPath},
				FastMode: flags.fast,
			})
			if err != nil {
				return fmt.Errorf("job %s failed at %s: %w", jobID, final.Step, err)
			}
			return writeResult(flags.output, flags.mode, final)
		},
	}

	cmd.Flags().StringVar(&flags.jobID, "job", "", "job id (generated when empty)")
	cmd.Flags().StringVar(&flags.mode, "mode", "cards", "pipeline mode: cards, simple, or holistic")
	cmd.Flags().BoolVar(&flags.fast, "fast", false, "skip claim verification")
	cmd.Flags().StringVar(&flags.storePath, "store", "", "sqlite checkpoint database (enables resume)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVar(&flags.name, "name", "", "deck name (defaults to the file name)")

	return cmd
}

// buildRunner wires the model client, renderer, graph, and checkpoint
// store for the requested mode. An explicit storePath wins over the
// checkpoint.path config key.
func buildRunner(root *rootFlags, cfg config.Config, mode, storePath string) (*pipeline.Runner, *checkpoint.SQLiteStore, error) {
	opts := pipeline.OptionsFromConfig(cfg)

	mc := cfg.Sub("model")
	client := model.NewGuarded(
		model.NewCLI(
			model.WithPath(mc.String("path", "claude")),
			model.WithModel(mc.String("name", "")),
			model.WithTimeout(mc.Duration("timeout", 5*time.Minute)),
		),
		limit.New(opts.MaxConcurrency),
	)

	renderer := pipeline.NewPopplerRenderer(
		pipeline.WithDPI(cfg.Int("render.dpi", 150)),
	)
	stages := pipeline.NewStages(client, renderer, opts)

	graph, err := buildGraph(stages, mode)
	if err != nil {
		return nil, nil, err
	}

	runnerOpts := []pipeline.RunnerOption{
		pipeline.WithRunnerLogger(root.logger()),
	}

	if storePath == "" {
		storePath = cfg.String("checkpoint.path", "")
	}
	var store *checkpoint.SQLiteStore
	if storePath != "" {
		store, err = checkpoint.NewSQLiteStore(storePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open checkpoint store: %w", err)
		}
		runnerOpts = append(runnerOpts, pipeline.WithStore(store))
	}

	return pipeline.NewRunner(graph, runnerOpts...), store, nil
}

func buildGraph(stages *pipeline.Stages, mode string) (*deckflow.CompiledGraph[pipeline.State], error) {
	switch mode {
	case "cards":
		return stages.BuildCardGraph()
	case "simple":
		return stages.BuildSimpleCardGraph()
	case "holistic":
		return stages.BuildHolisticGraph()
	default:
		return nil, fmt.Errorf("unknown mode %q (want cards, simple, or holistic)", mode)
	}
}

// writeResult writes the job's artifact: a markdown document for the
// holistic mode, exported cards as JSON otherwise.
func writeResult(output, mode string, final pipeline.State) error {
	var data []byte
	switch mode {
	case "holistic":
		data = []byte(final.Markdown)
	default:
		encoded, err := json.MarshalIndent(final.Exported, "", "  ")
		if err != nil {
			return fmt.Errorf("encode cards: %w", err)
		}
		data = append(encoded, '\n')
	}

	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
