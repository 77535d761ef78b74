package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"screendoc/internal/config"
	"screendoc/internal/queue"
)

var recordingExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".avi":  {},
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "add <recording>",
		Short: "Add a screen recording to the processing queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("recording does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect recording: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			ext := strings.ToLower(filepath.Ext(info.Name()))
			if _, ok := recordingExtensions[ext]; !ok {
				return fmt.Errorf("unsupported recording extension %q", ext)
			}

			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				if existing, err := store.FindBySourcePath(cmd.Context(), absPath); err != nil {
					return err
				} else if existing != nil && !existing.IsTerminal() {
					return fmt.Errorf("recording already queued as job #%d (%s)", existing.ID, existing.Status)
				}

				job, err := store.NewJob(cmd.Context(), absPath)
				if err != nil {
					return err
				}
				if strings.TrimSpace(title) != "" {
					job.Title = strings.TrimSpace(title)
					if err := store.Update(cmd.Context(), job); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued recording as job #%d (%s)\n", job.ID, job.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Override the title inferred from the filename")
	return cmd
}
