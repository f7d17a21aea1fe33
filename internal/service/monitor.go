package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikesoares/linkwatch/internal/domain"
)

// Evaluator produces the verdict for a single interface.
type Evaluator interface {
	Evaluate(ctx context.Context, ifc domain.Iface) domain.Evaluation
}

// StateStore remembers per-interface statuses between runs.
type StateStore interface {
	Load() map[string]domain.Status
	Save(order []string, states map[string]domain.Status) error
}

// Notifier delivers transition alerts. viaIface names a known-working
// interface to send through; empty means the default route.
type Notifier interface {
	Notify(ctx context.Context, runID string, transitions []domain.Transition, viaIface string) error
}

// Monitor drives the evaluate, reconcile, notify, persist cycle over
// the configured interfaces.
type Monitor struct {
	evaluator Evaluator
	store     StateStore
	notifier  Notifier
	ifaces    []domain.Iface
	interval  time.Duration
	dryRun    bool
	log       *slog.Logger

	mu        sync.RWMutex
	isRunning bool
	lastRun   *domain.RunSummary
}

type Config struct {
	Interfaces []domain.Iface
	Interval   time.Duration
	DryRun     bool
}

func New(evaluator Evaluator, store StateStore, notifier Notifier, config Config, log *slog.Logger) (*Monitor, error) {
	if len(config.Interfaces) == 0 {
		return nil, errors.New("no interfaces configured")
	}
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}

	return &Monitor{
		evaluator: evaluator,
		store:     store,
		notifier:  notifier,
		ifaces:    config.Interfaces,
		interval:  config.Interval,
		dryRun:    config.DryRun,
		log:       log,
	}, nil
}

// RunOnce performs a full monitoring cycle: evaluate every interface
// in configured order, diff against the persisted state, dispatch
// alerts for transitions and persist the new state. In dry-run mode
// alerts and persistence are skipped while evaluation still happens.
func (m *Monitor) RunOnce(ctx context.Context) (domain.RunSummary, error) {
	runID := uuid.NewString()
	log := m.log.With("run_id", runID)
	started := time.Now().UTC()

	previous := m.store.Load()

	evaluations := make([]domain.Evaluation, 0, len(m.ifaces))
	viaIface := ""
	for _, ifc := range m.ifaces {
		ev := m.evaluator.Evaluate(ctx, ifc)
		evaluations = append(evaluations, ev)
		if ev.Status == domain.StatusUp {
			viaIface = ifc.Name
		}

		log.Info("interface evaluated",
			"iface", ifc.Name,
			"label", ifc.Label,
			"status", string(ev.Status),
			"failures", len(ev.Failures),
		)
	}

	// A canceled run must not persist fabricated failures: every
	// probe after cancellation fails instantly.
	if err := ctx.Err(); err != nil {
		return domain.RunSummary{}, err
	}

	transitions := Reconcile(previous, evaluations)
	for _, tr := range transitions {
		log.Info("status transition",
			"iface", tr.Iface.Name,
			"from", string(tr.Previous),
			"to", string(tr.Current),
		)
	}

	if m.dryRun {
		log.Info("dry run, skipping alerts and state save", "transitions", len(transitions))
	} else {
		if len(transitions) > 0 {
			if err := m.notifier.Notify(ctx, runID, transitions, viaIface); err != nil {
				log.Error("alert dispatch failed", "error", err)
			}
		}
		if err := m.persist(evaluations); err != nil {
			return domain.RunSummary{}, err
		}
	}

	summary := m.summarize(runID, started, evaluations, len(transitions))

	m.mu.Lock()
	m.lastRun = &summary
	m.mu.Unlock()

	log.Info("run complete",
		"interfaces", len(evaluations),
		"transitions", len(transitions),
		"elapsed", time.Since(started).String(),
	)

	return summary, nil
}

// Watch runs the cycle immediately and then on every tick until the
// context is canceled.
func (m *Monitor) Watch(ctx context.Context) error {
	m.setRunning(true)
	defer m.setRunning(false)

	m.log.Info("monitor started", "interval", m.interval.String(), "interfaces", len(m.ifaces))

	if _, err := m.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		m.log.Error("run failed", "error", err)
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.log.Error("run failed", "error", err)
			}
		case <-ctx.Done():
			m.log.Info("monitor stopped")
			return nil
		}
	}
}

func (m *Monitor) persist(evaluations []domain.Evaluation) error {
	states := make(map[string]domain.Status, len(evaluations))
	order := make([]string, 0, len(evaluations))
	for _, ev := range evaluations {
		states[ev.Iface.Name] = ev.Status
		order = append(order, ev.Iface.Name)
	}

	if err := m.store.Save(order, states); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func (m *Monitor) summarize(runID string, started time.Time, evaluations []domain.Evaluation, transitions int) domain.RunSummary {
	reports := make([]domain.InterfaceReport, 0, len(evaluations))
	for _, ev := range evaluations {
		reports = append(reports, domain.InterfaceReport{
			Name:      ev.Iface.Name,
			Label:     ev.Iface.Label,
			Status:    ev.Status,
			Failures:  ev.Failures,
			CheckedAt: ev.CheckedAt,
		})
	}

	return domain.RunSummary{
		RunID:       runID,
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Interfaces:  reports,
		Transitions: transitions,
		DryRun:      m.dryRun,
	}
}

func (m *Monitor) setRunning(running bool) {
	m.mu.Lock()
	m.isRunning = running
	m.mu.Unlock()
}

// HealthCheck reports whether the watch loop is active.
func (m *Monitor) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.isRunning {
		return errors.New("monitor is not running")
	}
	return nil
}

// LastRun returns the most recent completed run summary.
func (m *Monitor) LastRun() (domain.RunSummary, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRun == nil {
		return domain.RunSummary{}, false
	}
	return *m.lastRun, true
}
