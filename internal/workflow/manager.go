package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"screendoc/internal/config"
	"screendoc/internal/logging"
	"screendoc/internal/notifications"
	"screendoc/internal/queue"
	"screendoc/internal/stage"
)

// StageSet bundles the concrete stage handlers the manager orchestrates.
type StageSet struct {
	Extractor stage.Handler
	Selector  stage.Handler
	Scanner   stage.Handler
	Narrator  stage.Handler
	Redactor  stage.Handler
	Assembler stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates the processing pipeline over the job queue.
type Manager struct {
	cfg       *config.Config
	store     *queue.Store
	logger    *slog.Logger
	notifier  notifications.Service
	stages    []pipelineStage
	byStart   map[queue.Status]pipelineStage
	startOrd  []queue.Status
	heartbeat *HeartbeatMonitor

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewManager wires the manager with the supplied stage handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, stages StageSet) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow-manager"),
		notifier: notifications.NewService(cfg),
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
	m.stages = []pipelineStage{
		{name: "extractor", handler: stages.Extractor, startStatus: queue.StatusPending, processingStatus: queue.StatusExtracting, doneStatus: queue.StatusExtracted},
		{name: "selector", handler: stages.Selector, startStatus: queue.StatusExtracted, processingStatus: queue.StatusSelecting, doneStatus: queue.StatusSelected},
		{name: "scanner", handler: stages.Scanner, startStatus: queue.StatusSelected, processingStatus: queue.StatusScanning, doneStatus: queue.StatusScanned},
		{name: "narrator", handler: stages.Narrator, startStatus: queue.StatusScanned, processingStatus: queue.StatusNarrating, doneStatus: queue.StatusAwaitingApproval},
		{name: "redactor", handler: stages.Redactor, startStatus: queue.StatusApproved, processingStatus: queue.StatusRedacting, doneStatus: queue.StatusRedacted},
		{name: "assembler", handler: stages.Assembler, startStatus: queue.StatusRedacted, processingStatus: queue.StatusAssembling, doneStatus: queue.StatusCompleted},
	}
	m.byStart = make(map[queue.Status]pipelineStage, len(m.stages))
	m.startOrd = make([]queue.Status, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			continue
		}
		m.byStart[stg.startStatus] = stg
		m.startOrd = append(m.startOrd, stg.startStatus)
	}
	return m
}

// Start launches the processing loop. Jobs left mid-stage by a previous
// process are rolled back to the start of their stage first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	reset, err := m.store.ResetStuckProcessing(ctx)
	if err != nil {
		return err
	}
	if reset > 0 {
		m.logger.Info("reset stuck jobs from previous run", logging.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.run(runCtx)
	m.logger.Info("workflow manager started", logging.Int("stages", len(m.startOrd)))
	return nil
}

// Stop cancels the processing loop and waits for in-flight work to unwind.
// Jobs still marked processing are failed so they do not appear active after
// the process exits.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.cancel = nil
	m.running = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	failed, err := m.store.FailInFlight(ctx, queue.DaemonStopReason)
	if err != nil {
		m.logger.Error("failed to mark in-flight jobs", logging.Error(err))
	} else if failed > 0 {
		m.logger.Info("failed in-flight jobs on shutdown", logging.Int64("count", failed))
	}
	m.logger.Info("workflow manager stopped")
}

// HealthChecks runs every registered handler's health check.
func (m *Manager) HealthChecks(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			continue
		}
		checks = append(checks, stg.handler.HealthCheck(ctx))
	}
	return checks
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	stg, ok := m.byStart[status]
	return stg, ok
}
