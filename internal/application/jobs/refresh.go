package jobs

import (
	"context"
	"time"

	"github.com/turtacn/KeyIP-Landscape/internal/application/analytics"
	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
)

// Job names.
const (
	RefreshJobName = "analytics-refresh"
	CleanupJobName = "analytics-cleanup"
)

const eventSource = "keyip-landscape-worker"

// Refresher is the slice of analytics.Service the refresh job needs.
type Refresher interface {
	Refresh(ctx context.Context) (*analytics.RefreshResult, error)
}

// Invalidator drops cached analytics.
type Invalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// RefreshedEvent is the payload of analytics.refreshed.
type RefreshedEvent struct {
	CorpusSize  int       `json:"corpusSize"`
	Invalidated int64     `json:"invalidated"`
	DurationMs  int64     `json:"durationMs"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// RefreshJob rebuilds the unfiltered landscape and dashboard results and
// announces the new snapshot.
type RefreshJob struct {
	refresher Refresher
	publisher kafka.Publisher
	topic     string
	logger    logging.Logger
}

// NewRefreshJob returns the refresh job. publisher may be nil, in which case
// no event is sent.
func NewRefreshJob(r Refresher, publisher kafka.Publisher, topic string, logger logging.Logger) *RefreshJob {
	if topic == "" {
		topic = kafka.TopicAnalyticsRefreshed
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RefreshJob{refresher: r, publisher: publisher, topic: topic, logger: logger}
}

func (j *RefreshJob) Name() string { return RefreshJobName }

func (j *RefreshJob) Run(ctx context.Context) error {
	res, err := j.refresher.Refresh(ctx)
	if err != nil {
		return err
	}
	if j.publisher == nil {
		return nil
	}

	env, err := kafka.NewEventEnvelope(kafka.EventAnalyticsRefreshed, eventSource, RefreshedEvent{
		CorpusSize:  res.CorpusSize,
		Invalidated: res.Invalidated,
		DurationMs:  res.Duration.Milliseconds(),
		RefreshedAt: res.RefreshedAt,
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(j.topic, RefreshJobName)
	if err != nil {
		return err
	}
	if err := j.publisher.Publish(ctx, msg); err != nil {
		j.logger.Warn("failed to publish refresh event", logging.String("topic", j.topic), logging.Err(err))
		return err
	}
	return nil
}

// CleanupJob purges assets that upstream stopped syncing and drops every
// cached result.
type CleanupJob struct {
	repo        asset.Repository
	invalidator Invalidator
	staleAfter  time.Duration
	now         func() time.Time
	logger      logging.Logger
}

// NewCleanupJob returns the cleanup job. A zero staleAfter keeps every asset
// and only clears the cache.
func NewCleanupJob(repo asset.Repository, inv Invalidator, staleAfter time.Duration, logger logging.Logger) *CleanupJob {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CleanupJob{repo: repo, invalidator: inv, staleAfter: staleAfter, now: time.Now, logger: logger}
}

func (j *CleanupJob) Name() string { return CleanupJobName }

func (j *CleanupJob) Run(ctx context.Context) error {
	var purged int64
	if j.staleAfter > 0 && j.repo != nil {
		n, err := j.repo.DeleteSyncedBefore(ctx, j.now().Add(-j.staleAfter))
		if err != nil {
			return err
		}
		purged = n
	}

	invalidated, err := j.invalidator.Invalidate(ctx)
	if err != nil {
		return err
	}
	j.logger.Info("cleanup finished",
		logging.Int64("purged_assets", purged),
		logging.Int64("invalidated", invalidated))
	return nil
}

//Personal.AI order the ending
