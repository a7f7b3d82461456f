package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PropertyProspector/internal/logger"
	"PropertyProspector/internal/metrics"
	"PropertyProspector/internal/recorder"
)

// DefaultArchiveCron runs archival daily at 03:00 (seconds field enabled).
const DefaultArchiveCron = "0 0 3 * * *"

// Scheduler runs periodic maintenance jobs against the analysis store.
type Scheduler struct {
	Cron   *cron.Cron
	Store  recorder.Store
	MaxAge time.Duration
	Ctx    context.Context

	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a Scheduler archiving analyses older than maxAge.
func NewScheduler(ctx context.Context, store recorder.Store, maxAge time.Duration, l *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Store:  store,
		MaxAge: maxAge,
		Ctx:    ctx,
		logger: logger.OrNop(l),
		now:    time.Now,
	}
}

// RegisterArchive registers the archival job. An empty spec uses DefaultArchiveCron.
func (s *Scheduler) RegisterArchive(spec string) error {
	if spec == "" {
		spec = DefaultArchiveCron
	}
	if _, err := s.Cron.AddFunc(spec, s.archiveTask); err != nil {
		return fmt.Errorf("register archive task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunArchiveNow executes the archival job immediately and returns the number of
// analyses archived.
func (s *Scheduler) RunArchiveNow() (int, error) {
	cutoff := s.now().Add(-s.MaxAge)
	n, err := s.Store.ArchiveStale(s.Ctx, cutoff)
	if err != nil {
		return 0, err
	}
	metrics.AnalysesArchived.Add(float64(n))
	s.logger.Info("archived stale analyses",
		zap.Int("count", n),
		zap.Time("cutoff", cutoff))
	return n, nil
}

func (s *Scheduler) archiveTask() {
	if _, err := s.RunArchiveNow(); err != nil {
		s.logger.Warn("archive task failed", zap.Error(err))
	}
}
