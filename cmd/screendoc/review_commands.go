package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screendoc/internal/config"
	"screendoc/internal/logging"
	"screendoc/internal/queue"
	"screendoc/internal/redact"
	"screendoc/internal/review"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Review detected PII before redaction",
	}

	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewShowCommand(ctx))
	reviewCmd.AddCommand(newReviewApproveCommand(ctx))
	reviewCmd.AddCommand(newReviewReopenCommand(ctx))

	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs waiting for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				svc := review.NewService(store, logging.NewNop())
				pending, err := svc.Pending(cmd.Context())
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs awaiting approval")
					return nil
				}

				rows := make([][]string, 0, len(pending))
				for _, job := range pending {
					detail, err := svc.Describe(cmd.Context(), job.ID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						strconv.FormatInt(job.ID, 10),
						job.Title,
						strconv.Itoa(detail.Matches),
						job.CreatedAt.Local().Format(time.DateTime),
					})
				}
				table := renderTable(
					[]string{"ID", "Title", "Matches", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newReviewShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show detected matches and preview images for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				svc := review.NewService(store, logging.NewNop())
				detail, err := svc.Describe(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job #%d: %s (%d matches)\n", detail.Job.ID, detail.Job.Title, detail.Matches)
				for _, frame := range detail.Frames {
					if len(frame.Matches) == 0 {
						continue
					}
					fmt.Fprintf(out, "\nFrame %d (%s)\n", frame.Position, frame.Path)
					if frame.PreviewPath != "" {
						fmt.Fprintf(out, "  Preview: %s\n", frame.PreviewPath)
					}
					for i, match := range frame.Matches {
						fmt.Fprintf(out, "  [%d] %s (%s): %q at (%d,%d)-(%d,%d)\n",
							i, match.Type, match.Confidence, match.Text,
							match.Region.X1, match.Region.Y1, match.Region.X2, match.Region.Y2)
					}
				}
				if detail.Matches == 0 {
					fmt.Fprintln(out, "No matches detected")
				}
				fmt.Fprintf(out, "\nApprove with: screendoc review approve %d [--keep frame:match] [--mode blur|black|pixelate]\n", id)
				return nil
			})
		},
	}
}

func newReviewApproveCommand(ctx *commandContext) *cobra.Command {
	var keepFlags []string
	var mode string

	cmd := &cobra.Command{
		Use:   "approve <job-id>",
		Short: "Approve a job for redaction",
		Long: "Approve a job for redaction. Every detected match is redacted unless\n" +
			"kept explicitly with --keep frame:match (indices as printed by review show).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			kept, err := parseKeepFlags(keepFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				svc := review.NewService(store, logging.NewNop())

				var decisions []redact.FrameDecisions
				if len(kept) > 0 {
					detail, err := svc.Describe(cmd.Context(), id)
					if err != nil {
						return err
					}
					decisions = buildDecisions(detail, kept)
				}

				if err := svc.Approve(cmd.Context(), id, decisions, mode); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Approved job #%d for redaction\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&keepFlags, "keep", nil, "Keep a match unredacted, as frame:match (repeatable)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Redaction mode override (blur, black, pixelate)")
	return cmd
}

func newReviewReopenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <job-id>",
		Short: "Send a job parked after a failure back through the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				svc := review.NewService(store, logging.NewNop())
				if err := svc.Reopen(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reopened job #%d\n", id)
				return nil
			})
		},
	}
}

type keepKey struct {
	position   int
	matchIndex int
}

func parseKeepFlags(flags []string) (map[keepKey]struct{}, error) {
	kept := make(map[keepKey]struct{}, len(flags))
	for _, flag := range flags {
		parts := strings.SplitN(strings.TrimSpace(flag), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --keep value %q, want frame:match", flag)
		}
		position, err := strconv.Atoi(parts[0])
		if err != nil || position <= 0 {
			return nil, fmt.Errorf("invalid frame in --keep value %q", flag)
		}
		matchIndex, err := strconv.Atoi(parts[1])
		if err != nil || matchIndex < 0 {
			return nil, fmt.Errorf("invalid match in --keep value %q", flag)
		}
		kept[keepKey{position: position, matchIndex: matchIndex}] = struct{}{}
	}
	return kept, nil
}

// buildDecisions expands the keep set into explicit per-match decisions so
// everything not kept is still redacted.
func buildDecisions(detail *review.Detail, kept map[keepKey]struct{}) []redact.FrameDecisions {
	decisions := make([]redact.FrameDecisions, 0, len(detail.Frames))
	for _, frame := range detail.Frames {
		if len(frame.Matches) == 0 {
			continue
		}
		frameDecisions := redact.FrameDecisions{Position: frame.Position}
		for i := range frame.Matches {
			_, keep := kept[keepKey{position: frame.Position, matchIndex: i}]
			frameDecisions.Decisions = append(frameDecisions.Decisions, redact.Decision{
				MatchIndex: i,
				Redact:     !keep,
			})
		}
		decisions = append(decisions, frameDecisions)
	}
	return decisions
}
