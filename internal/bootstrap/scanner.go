package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	"github.com/debdevops/servicehub/internal/services"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ScannerConfig tunes the background DLQ scanner.
type ScannerConfig struct {
	Interval                time.Duration
	Settings                services.ScanSettings
	MaxConcurrentNamespaces int
}

// DlqScanner is the cooperative background worker that keeps the tracked DLQ
// store in sync with the broker. It completes the in-flight pass on shutdown
// instead of dying mid-iteration.
type DlqScanner struct {
	useCase *services.UseCase
	config  ScannerConfig
	logger  libLog.Logger

	trigger chan uuid.UUID
}

// NewDlqScanner creates the scanner. Run starts it; ScanNow triggers an
// out-of-band pass for one namespace.
func NewDlqScanner(useCase *services.UseCase, config ScannerConfig, logger libLog.Logger) *DlqScanner {
	return &DlqScanner{
		useCase: useCase,
		config:  config,
		logger:  logger,
		trigger: make(chan uuid.UUID, 16),
	}
}

// Run loops until the process receives an interrupt. Each tick scans the
// active namespaces with bounded fan-out, then gives auto-replay rules a pass
// over whatever the scan surfaced.
func (s *DlqScanner) Run(l *libCommons.Launcher) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = libCommons.ContextWithLogger(ctx, s.logger)

	// Passes run detached from the shutdown signal so the in-flight pass
	// finishes before Run returns.
	passCtx := context.WithoutCancel(ctx)

	s.logger.Infof("DLQ scanner started, interval %s", s.config.Interval)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("DLQ scanner stopping")

			return nil
		case namespaceID := <-s.trigger:
			s.scanOne(passCtx, namespaceID)
		case <-ticker.C:
			s.scanAll(passCtx)
		}
	}
}

// ScanNow bypasses the interval for one namespace and returns the count of
// newly tracked messages.
func (s *DlqScanner) ScanNow(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	ns, err := s.useCase.NamespaceRepo.Find(ctx, namespaceID)
	if err != nil {
		return 0, err
	}

	return s.useCase.ScanNamespace(ctx, ns, s.config.Settings)
}

// TriggerScan queues an out-of-band scan for one namespace without waiting
// for it. Drops the request when the trigger queue is full.
func (s *DlqScanner) TriggerScan(namespaceID uuid.UUID) {
	select {
	case s.trigger <- namespaceID:
	default:
		s.logger.Warnf("Scan trigger queue full, dropping request for namespace %s", namespaceID)
	}
}

func (s *DlqScanner) scanAll(ctx context.Context) {
	namespaces, err := s.useCase.NamespaceRepo.FindActive(ctx)
	if err != nil {
		s.logger.Errorf("Listing active namespaces failed: %v", err)

		return
	}

	sem := semaphore.NewWeighted(int64(s.config.MaxConcurrentNamespaces))

	for _, ns := range namespaces {
		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}

		go func(ns *mmodel.Namespace) {
			defer sem.Release(1)

			if _, err := s.useCase.ScanNamespace(ctx, ns, s.config.Settings); err != nil {
				s.logger.Warnf("Scanning namespace %s failed: %v", ns.Name, err)
			}
		}(ns)
	}

	// Wait for the in-flight namespace scans before evaluating rules, so this
	// tick's sightings are visible to the replay pass.
	if err := sem.Acquire(ctx, int64(s.config.MaxConcurrentNamespaces)); err != nil {
		return
	}

	sem.Release(int64(s.config.MaxConcurrentNamespaces))

	s.autoReplayPass(ctx)
}

func (s *DlqScanner) scanOne(ctx context.Context, namespaceID uuid.UUID) {
	if _, err := s.ScanNow(ctx, namespaceID); err != nil {
		s.logger.Warnf("Triggered scan of namespace %s failed: %v", namespaceID, err)
	}
}

// autoReplayPass runs every enabled auto-replay rule through the batch
// coordinator. Rule failures are isolated.
func (s *DlqScanner) autoReplayPass(ctx context.Context) {
	rules, err := s.useCase.DlqRepo.FindAllRules(ctx, nil)
	if err != nil {
		s.logger.Warnf("Listing rules for auto-replay failed: %v", err)

		return
	}

	for _, rule := range rules {
		if !rule.Enabled || !rule.Action.AutoReplay {
			continue
		}

		summary, err := s.useCase.ReplayAll(ctx, rule.ID)
		if err != nil {
			s.logger.Warnf("Auto-replay via rule %s failed: %v", rule.Name, err)

			continue
		}

		if summary.Matched > 0 {
			s.logger.Infof("Rule %s auto-replayed %d/%d matches (%d failed, %d skipped)",
				rule.Name, summary.Replayed, summary.Matched, summary.Failed, summary.Skipped)
		}
	}
}
