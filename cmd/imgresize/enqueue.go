package main

import (
	"fmt"
	"path/filepath"

	"github.com/phambaophuc/imgresize/internal/services/queue"
	"github.com/phambaophuc/imgresize/internal/services/sizing"
	"github.com/spf13/cobra"
)

func (a *app) enqueueCommand() *cobra.Command {
	flags := &resizeFlags{}

	cmd := &cobra.Command{
		Use:   "enqueue <path>",
		Short: "Queue a resize job for a worker instead of resizing locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := flags.request(cmd)
			if err := sizing.Validate(req); err != nil {
				return err
			}
			if _, err := sizing.ModeOf(req); err != nil {
				return err
			}

			// paths on the command line are relative to the working directory
			source, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			outputDir := flags.output
			if outputDir != "" {
				if outputDir, err = filepath.Abs(outputDir); err != nil {
					return err
				}
			}
			if source, outputDir, err = queue.ConfinePaths(a.cfg.Jobs.BaseDir, source, outputDir); err != nil {
				return err
			}

			queueSvc, err := queue.NewQueueService(a.cfg, nil, nil, a.logger)
			if err != nil {
				return err
			}
			defer queueSvc.Close()

			job := queue.NewJob(source, outputDir, req, flags.upload)
			if err := queueSvc.PublishJob(cmd.Context(), job); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Queued job %s for %s\n", job.ID, source)
			return nil
		},
	}
	addResizeFlags(cmd, flags)

	return cmd
}
