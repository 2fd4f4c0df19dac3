package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/deskshell/internal/shell"
	"github.com/1broseidon/deskshell/internal/wm"
)

// Sweeper runs one consistency pass and reports what it repaired.
type Sweeper func(ctx context.Context) (wm.ConsistencyReport, error)

// ServiceSweeper runs the window manager consistency check on the shell
// loop owned by svc.
func ServiceSweeper(svc *shell.Service) Sweeper {
	return func(ctx context.Context) (wm.ConsistencyReport, error) {
		var report wm.ConsistencyReport
		err := svc.Do(ctx, "consistency-sweep", func(sh *shell.Shell) error {
			report = sh.WM.CheckConsistency()
			return nil
		})
		return report, err
	}
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	// Interval between sweeps. Zero or less disables the periodic loop;
	// ReconcileNow still works.
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks the registry, groups and taskbar for drift
// and corrects it.
type Reconciler struct {
	interval time.Duration
	sweep    Sweeper
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, sweep Sweeper) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		interval: cfg.Interval,
		sweep:    sweep,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("reconciler disabled")
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) (report wm.ConsistencyReport, err error) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("reconciler panic recovered", "error", p)
			err = fmt.Errorf("reconciler panic: %v", p)
		}
	}()

	report, err = r.sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("reconciler: sweep failed", "error", err)
		}
		return report, err
	}

	if report.Repaired() {
		r.logger.Info("reconciler: drift repaired",
			"taskbar_created", len(report.Taskbar.Created),
			"taskbar_removed", len(report.Taskbar.Removed),
			"taskbar_retitled", len(report.Taskbar.Retitled),
			"taskbar_restated", len(report.Taskbar.Restated),
			"dropped_members", len(report.DroppedMembers),
			"orphans", len(report.Orphans),
			"active_fixed", len(report.ActiveFixed),
			"closed_groups", len(report.ClosedGroups),
			"focus_fixed", report.FocusFixed)
	} else {
		r.logger.Debug("reconciler: no drift")
	}
	return report, nil
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) (wm.ConsistencyReport, error) {
	return r.reconcile(ctx)
}
