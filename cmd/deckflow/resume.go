package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type resumeFlags struct {
	mode      string
	storePath string
	output    string
}

func newResumeCmd(root *rootFlags) *cobra.Command {
	flags := &resumeFlags{}

	cmd := &cobra.Command{
		Use:   "resume <job-id>",
		Short: "Resume a job from its latest checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			jobID := args[0]
			runner, store, err := buildRunner(root, cfg, flags.mode, flags.storePath)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("resume needs a checkpoint store: pass --store or set checkpoint.path")
			}
			defer store.Close()

			root.logger().Info("job resuming", "job_id", jobID, "mode", flags.mode)

			final, err := runner.Resume(cmd.Context(), jobID)
			if err != nil {
				return fmt.Errorf("job %s failed at %s: %w", jobID, final.Step, err)
			}
			return writeResult(flags.output, flags.mode, final)
		},
	}

	cmd.Flags().StringVar(&flags.mode, "mode", "cards", "pipeline mode the job was started with")
	cmd.Flags().StringVar(&flags.storePath, "store", "", "sqlite checkpoint database")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (stdout when empty)")

	return cmd
}
