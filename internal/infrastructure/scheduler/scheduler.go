package scheduler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sangkips/kassensystem/internal/domain/repository"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// jobTimeout bounds a single run of a housekeeping job
const jobTimeout = 30 * time.Second

// Scheduler runs periodic housekeeping jobs
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
	now  func() time.Time
}

// New creates a scheduler that evaluates specs in loc
func New(loc *time.Location, log *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		log:  log,
		now:  time.Now,
	}
}

// AddIdempotencyCleanup purges expired idempotency keys on the cron schedule
func (s *Scheduler) AddIdempotencyCleanup(spec string, repo repository.IdempotencyRepository) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.PurgeIdempotencyKeys(repo)
	})
	return errors.Wrapf(err, "invalid cleanup spec %q", spec)
}

// PurgeIdempotencyKeys deletes keys that expired before now
func (s *Scheduler) PurgeIdempotencyKeys(repo repository.IdempotencyRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := repo.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error("idempotency cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("idempotency keys purged", zap.Int64("count", n))
	}
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
