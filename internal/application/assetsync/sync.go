// Package assetsync keeps the corpus store in step with upstream sources.
// Upstream collectors publish asset.synced events; the worker consumes them,
// writes the records and drops the cached analytics so the next request sees
// the new corpus.
package assetsync

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
	"github.com/turtacn/KeyIP-Landscape/pkg/types/common"
)

// SourceName identifies this service in event envelopes.
const SourceName = "keyip-landscape"

// SyncedEvent is the payload of an asset.synced event. Producers send either
// a single Asset or a batch in Assets; both may be present.
type SyncedEvent struct {
	Source string         `json:"source,omitempty"`
	Asset  *asset.Asset   `json:"asset,omitempty"`
	Assets []*asset.Asset `json:"assets,omitempty"`
}

// Records returns every non-nil asset of the event, tagging untagged ones
// with the event source.
func (e *SyncedEvent) Records() []*asset.Asset {
	out := make([]*asset.Asset, 0, len(e.Assets)+1)
	add := func(a *asset.Asset) {
		if a == nil {
			return
		}
		if strings.TrimSpace(a.APISource) == "" && e.Source != "" {
			cp := *a
			cp.APISource = e.Source
			a = &cp
		}
		out = append(out, a)
	}
	add(e.Asset)
	for _, a := range e.Assets {
		add(a)
	}
	return out
}

// CacheInvalidator drops cached analytics results.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// Result summarises one sync.
type Result struct {
	Received    int   `json:"received"`
	Written     int64 `json:"written"`
	Invalidated int64 `json:"invalidated"`
}

// Service writes synced assets and invalidates the analytics cache.
type Service struct {
	repo        asset.Repository
	invalidator CacheInvalidator
	metrics     *prometheus.AppMetrics
	logger      logging.Logger
	topic       string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records upserts on m.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTopic overrides the topic the handler subscribes to.
func WithTopic(topic string) Option {
	return func(s *Service) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// NewService returns a Service. invalidator may be nil when no cache is
// configured.
func NewService(repo asset.Repository, invalidator CacheInvalidator, logger logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger.Named("assetsync"),
		topic:       kafka.TopicAssetSynced,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Topic is the topic Handle expects messages from.
func (s *Service) Topic() string {
	return s.topic
}

// Sync upserts records and invalidates the analytics cache when anything
// was written. A single record takes the plain upsert path; larger sets are
// written in one transaction.
func (s *Service) Sync(ctx context.Context, records []*asset.Asset) (*Result, error) {
	res := &Result{Received: len(records)}
	if len(records) == 0 {
		return res, nil
	}

	switch len(records) {
	case 1:
		if _, err := s.repo.Upsert(ctx, records[0]); err != nil {
			return res, err
		}
		res.Written = 1
	default:
		n, err := s.repo.UpsertBatch(ctx, records)
		if err != nil {
			return res, err
		}
		res.Written = n
	}
	for _, a := range records {
		s.metrics.RecordAssetUpsert(a.APISource)
	}

	if s.invalidator != nil {
		n, err := s.invalidator.Invalidate(ctx)
		if err != nil {
			// Cached results expire on their own TTL.
			s.logger.Warn("analytics cache invalidation failed", logging.Err(err))
		}
		res.Invalidated = n
	}

	s.logger.Info("assets synced",
		logging.Int("received", res.Received),
		logging.Int64("written", res.Written),
		logging.Int64("invalidated", res.Invalidated))
	return res, nil
}

// Handle is the Kafka message handler for asset.synced events. Other event
// types on the topic are acknowledged and ignored.
func (s *Service) Handle(ctx context.Context, msg *common.Message) error {
	start := time.Now()
	err := s.handle(ctx, msg)
	if msg != nil {
		s.metrics.RecordEventConsumed(msg.Topic, time.Since(start), err)
	}
	return err
}

func (s *Service) handle(ctx context.Context, msg *common.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	if env.EventType != kafka.EventAssetSynced {
		s.logger.Debug("ignoring event", logging.String("event_type", env.EventType), logging.String("event_id", env.EventID))
		return nil
	}

	var ev SyncedEvent
	if err := env.DecodePayload(&ev); err != nil {
		return err
	}
	if ev.Source == "" {
		ev.Source = env.Source
	}
	records := ev.Records()
	if len(records) == 0 {
		return errors.New(errors.ErrCodeValidation, "asset.synced event carries no assets").WithDetail(env.EventID)
	}

	if _, err := s.Sync(ctx, records); err != nil {
		s.logger.Error("asset sync failed", logging.String("event_id", env.EventID), logging.Err(err))
		return err
	}
	return nil
}

// AsHandler adapts Handle to the consumer callback type.
func (s *Service) AsHandler() common.MessageHandler {
	return s.Handle
}

//Personal.AI order the ending
