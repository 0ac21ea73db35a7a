// Package jobs runs the worker's periodic tasks. Every run takes a Redis
// lock first, so with several worker replicas each firing executes once.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

const defaultLockTTL = 10 * time.Minute

var (
	// ErrJobLocked means another replica holds the job's lock.
	ErrJobLocked = errors.New(errors.ErrCodeConflict, "job is running elsewhere")
	// ErrUnknownJob is returned by RunNow for unregistered names.
	ErrUnknownJob = errors.New(errors.ErrCodeNotFound, "unknown job")
)

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// EntryInfo describes a registered job.
type EntryInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev,omitempty"`
}

type entry struct {
	id       cron.EntryID
	schedule string
	job      Job
}

// Scheduler wraps a cron runner with per-job distributed locks.
type Scheduler struct {
	cron    *cron.Cron
	locks   redis.LockFactory
	lockTTL time.Duration
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]entry

	base   context.Context
	cancel context.CancelFunc
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLocks guards every run with a mutex from f. Without it runs are not
// coordinated across processes.
func WithLocks(f redis.LockFactory, ttl time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.locks = f
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithSchedulerMetrics records run outcomes on m.
func WithSchedulerMetrics(m *prometheus.AppMetrics) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

// WithLocation evaluates schedules in loc instead of UTC. It must precede
// any Register call.
func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) {
		if loc != nil {
			s.cron = cron.New(cronOptions(s.logger, loc)...)
		}
	}
}

// NewScheduler returns a stopped scheduler. Schedules use the five-field cron
// syntax and descriptors such as @daily or @every 1h.
func NewScheduler(logger logging.Logger, opts ...SchedulerOption) *Scheduler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("scheduler")
	base, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron.New(cronOptions(logger, time.UTC)...),
		lockTTL: defaultLockTTL,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]entry),
		base:    base,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cronOptions(logger logging.Logger, loc *time.Location) []cron.Option {
	cl := cronLogger{logger}
	return []cron.Option{
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	}
}

// Register schedules job under spec. Names must be unique.
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, dup := s.entries[name]; dup {
		return errors.New(errors.ErrCodeConflict, fmt.Sprintf("job %q already registered", name))
	}
	id, err := s.cron.AddFunc(spec, func() {
		if err := s.run(s.base, job); err != nil && err != ErrJobLocked {
			s.logger.Error("scheduled job failed", logging.String("job", name), logging.Err(err))
		}
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, fmt.Sprintf("invalid schedule %q for job %q", spec, name))
	}
	s.entries[name] = entry{id: id, schedule: spec, job: job}
	s.logger.Info("job registered", logging.String("job", name), logging.String("schedule", spec))
	return nil
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", logging.Int("jobs", len(s.Entries())))
}

// Stop prevents new runs, cancels running ones and waits for them to return
// or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes a registered job immediately, under the same lock as
// scheduled runs.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return ErrUnknownJob.WithDetail(name)
	}
	return s.run(ctx, e.job)
}

// Entries lists registered jobs sorted by name.
func (s *Scheduler) Entries() []EntryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EntryInfo, 0, len(s.entries))
	for name, e := range s.entries {
		ce := s.cron.Entry(e.id)
		out = append(out, EntryInfo{Name: name, Schedule: e.schedule, Next: ce.Next, Prev: ce.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	name := job.Name()
	log := s.logger.With(logging.String("job", name))

	if s.locks != nil {
		mu := s.locks.NewMutex("job:"+name, redis.WithLockTTL(s.lockTTL))
		ok, err := mu.TryLock(ctx)
		if err != nil {
			s.metrics.RecordJobRun(name, 0, err, s.now())
			return err
		}
		if !ok {
			log.Info("job skipped, lock held by another worker")
			return ErrJobLocked
		}
		defer func() {
			if err := mu.Unlock(context.Background()); err != nil {
				log.Warn("failed to release job lock", logging.Err(err))
			}
		}()
	}

	runCtx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()

	start := time.Now()
	err := job.Run(runCtx)
	elapsed := time.Since(start)
	s.metrics.RecordJobRun(name, elapsed, err, s.now())
	if err != nil {
		return err
	}
	log.Info("job finished", logging.Duration("duration", elapsed))
	return nil
}

// cronLogger routes cron's internal logging through the service logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(kvFields(keysAndValues), logging.Err(err))...)
}

func kvFields(kv []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logging.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}

//Personal.AI order the ending
