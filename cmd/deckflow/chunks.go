package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/pipeline"
)

func newChunksCmd(root *rootFlags) *cobra.Command {
	var size int
	var overlap float64

	cmd := &cobra.Command{
		Use:   "chunks <total-slides>",
		Short: "Show the chunk windows for a deck size",
		Long:  "Prints the overlapping chunk windows the holistic pipeline would use\nfor a deck of the given size, for inspecting chunking configuration.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.Atoi(args[0])
			if err != nil || total < 1 {
				return fmt.Errorf("total slides must be a positive integer, got %q", args[0])
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			chunking := pipeline.OptionsFromConfig(cfg).Normalize().Chunking
			if size > 0 {
				chunking.TargetChunkSize = size
			}
			if cmd.Flags().Changed("overlap") {
				chunking.OverlapRatio = overlap
			}

			chunks := chunking.CreateChunks(total)
			fmt.Fprintf(cmd.OutOrStdout(), "%d slides, target %d, overlap %.2f -> %d chunks\n",
				total, chunking.TargetChunkSize, chunking.OverlapRatio, len(chunks))
			for _, c := range chunks {
				fmt.Fprintf(cmd.OutOrStdout(), "  chunk %d: slides %d-%d (%d slides%s)\n",
					c.Index, c.StartSlide, c.EndSlide, c.Size(), chunkNotes(c))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "target chunk size (overrides config)")
	cmd.Flags().Float64Var(&overlap, "overlap", 0, "overlap ratio in [0, 0.5] (overrides config)")

	return cmd
}

func chunkNotes(c deck.DocumentChunk) string {
	notes := ""
	if c.OverlapStart > 0 {
		notes += fmt.Sprintf(", overlaps previous by %d", c.OverlapStart)
	}
	if c.IsLast {
		notes += ", last"
	}
	return notes
}
