package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screendoc/internal/config"
	"screendoc/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				var rows [][]string
				for _, status := range queue.AllStatuses() {
					if count := stats[status]; count > 0 {
						rows = append(rows, []string{string(status), strconv.Itoa(count)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(listStatuses))
			for _, value := range listStatuses {
				status, ok := queue.ParseStatus(value)
				if !ok {
					return fmt.Errorf("unknown status %q", value)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						strconv.FormatInt(job.ID, 10),
						job.Title,
						string(job.Status),
						formatProgress(job),
						job.CreatedAt.Local().Format(time.DateTime),
					})
				}
				table := renderTable(
					[]string{"ID", "Title", "Status", "Progress", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				job, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %d not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job #%d: %s\n", job.ID, job.Title)
				fmt.Fprintf(out, "  Source:   %s\n", job.SourcePath)
				fmt.Fprintf(out, "  Status:   %s\n", job.Status)
				if progress := formatProgress(job); progress != "" {
					fmt.Fprintf(out, "  Progress: %s\n", progress)
				}
				if job.FrameCount > 0 {
					fmt.Fprintf(out, "  Frames:   %d extracted\n", job.FrameCount)
				}
				if job.DocumentPath != "" {
					fmt.Fprintf(out, "  Document: %s\n", job.DocumentPath)
				}
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error:    %s\n", job.ErrorMessage)
				}
				if job.NeedsReview && job.ReviewReason != "" {
					fmt.Fprintf(out, "  Review:   %s\n", job.ReviewReason)
				}
				fmt.Fprintf(out, "  Created:  %s\n", job.CreatedAt.Local().Format(time.DateTime))
				fmt.Fprintf(out, "  Updated:  %s\n", job.UpdatedAt.Local().Format(time.DateTime))
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [job-id...]",
		Short: "Retry failed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseJobID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				retried, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried %d job(s)\n", retried)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <job-id>",
		Short: "Remove a job from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("job %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed job #%d\n", id)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear completed jobs from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				var cleared int64
				var err error
				switch {
				case clearAll:
					cleared, err = store.Clear(cmd.Context())
				case clearFailed:
					cleared, err = store.ClearFailed(cmd.Context())
				default:
					cleared, err = store.ClearCompleted(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d job(s)\n", cleared)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Clear failed jobs instead of completed")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Clear every job regardless of status")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show aggregate queue health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				rows := [][]string{
					{"Total", strconv.Itoa(health.Total)},
					{"Pending", strconv.Itoa(health.Pending)},
					{"Processing", strconv.Itoa(health.Processing)},
					{"Awaiting approval", strconv.Itoa(health.AwaitingApproval)},
					{"Failed", strconv.Itoa(health.Failed)},
					{"Completed", strconv.Itoa(health.Completed)},
				}
				table := renderTable([]string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func formatProgress(job *queue.Job) string {
	stage := strings.TrimSpace(job.ProgressStage)
	if stage == "" {
		return ""
	}
	if job.ProgressPercent > 0 {
		return fmt.Sprintf("%s (%.0f%%)", stage, job.ProgressPercent)
	}
	return stage
}

func parseJobID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", value)
	}
	return id, nil
}
