package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"screendoc/internal/config"
	"screendoc/internal/preflight"
	"screendoc/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, queue, and environment status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				var lines []string

				lines = append(lines, renderSectionHeader("Daemon", colorize)...)
				lines = append(lines, renderDaemonStatus(cfg, colorize)...)

				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Queue", colorize)...)
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				lines = append(lines, renderQueueStatus(health, store.Path(), colorize)...)

				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Environment", colorize)...)
				for _, result := range preflight.RunAll(cmd.Context(), cfg) {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}

				fmt.Fprintln(out, strings.Join(lines, "\n"))
				return nil
			})
		},
	}
}

// renderDaemonStatus probes the daemon's lock file. Holding the lock means
// no daemon is running; failing to take it means one is.
func renderDaemonStatus(cfg *config.Config, colorize bool) []string {
	lockPath := filepath.Join(cfg.Paths.LogDir, "screendoc.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	switch {
	case err != nil:
		return []string{renderStatusLine("Daemon", statusWarn, fmt.Sprintf("lock check failed: %v", err), colorize)}
	case locked:
		_ = lock.Unlock()
		return []string{
			renderStatusLine("Daemon", statusWarn, "not running", colorize),
			renderStatusLine("Lock file", statusInfo, lockPath, colorize),
		}
	default:
		return []string{
			renderStatusLine("Daemon", statusOK, "running", colorize),
			renderStatusLine("Lock file", statusInfo, lockPath, colorize),
		}
	}
}

func renderQueueStatus(health queue.HealthSummary, dbPath string, colorize bool) []string {
	processingKind := statusInfo
	if health.Processing > 0 {
		processingKind = statusOK
	}
	failedKind := statusOK
	if health.Failed > 0 {
		failedKind = statusError
	}
	approvalKind := statusOK
	if health.AwaitingApproval > 0 {
		approvalKind = statusWarn
	}
	return []string{
		renderStatusLine("Database", statusInfo, dbPath, colorize),
		renderStatusLine("Total jobs", statusInfo, fmt.Sprintf("%d", health.Total), colorize),
		renderStatusLine("Pending", statusInfo, fmt.Sprintf("%d", health.Pending), colorize),
		renderStatusLine("Processing", processingKind, fmt.Sprintf("%d", health.Processing), colorize),
		renderStatusLine("Awaiting approval", approvalKind, fmt.Sprintf("%d", health.AwaitingApproval), colorize),
		renderStatusLine("Failed", failedKind, fmt.Sprintf("%d", health.Failed), colorize),
		renderStatusLine("Completed", statusInfo, fmt.Sprintf("%d", health.Completed), colorize),
	}
}
