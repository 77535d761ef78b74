package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"screendoc/internal/daemon"
	"screendoc/internal/document"
	"screendoc/internal/extraction"
	"screendoc/internal/keyframes"
	"screendoc/internal/logging"
	"screendoc/internal/narrative"
	"screendoc/internal/queue"
	"screendoc/internal/redact"
	"screendoc/internal/scanning"
	"screendoc/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the processing daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			manager := workflow.NewManager(cfg, store, logger, workflow.StageSet{
				Extractor: extraction.NewExtractor(cfg, store, logger),
				Selector:  keyframes.NewSelector(cfg, store, logger),
				Scanner:   scanning.NewScanner(cfg, store, logger),
				Narrator:  narrative.NewNarrator(cfg, store, logger),
				Redactor:  redact.NewRedactor(cfg, store, logger),
				Assembler: document.NewAssembler(cfg, store, logger),
			})

			d, err := daemon.New(cfg, store, logger, manager)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			if err := d.Start(signalCtx); err != nil {
				return err
			}

			<-signalCtx.Done()
			logger.Info("screendoc daemon shutting down")
			d.Stop(cmd.Context())
			return nil
		},
	}
}
