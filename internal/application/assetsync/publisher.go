package assetsync

import (
	"context"
	"fmt"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
	"github.com/turtacn/KeyIP-Landscape/pkg/types/common"
)

const defaultChunkSize = 100

// BatchPublisher is the subset of kafka.Producer used by Emitter.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, msgs []*common.ProducerMessage) (*common.BatchPublishResult, error)
}

// Emitter turns asset records into asset.synced events. It backs the
// "keyip assets publish" command and lets collectors feed the worker.
type Emitter struct {
	pub       BatchPublisher
	topic     string
	source    string
	chunkSize int
}

// NewEmitter returns an Emitter that packs up to chunkSize assets per event.
func NewEmitter(pub BatchPublisher, topic, source string, chunkSize int) *Emitter {
	if topic == "" {
		topic = kafka.TopicAssetSynced
	}
	if source == "" {
		source = SourceName
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Emitter{pub: pub, topic: topic, source: source, chunkSize: chunkSize}
}

// Emit publishes records in chunks and returns the per-message outcome.
// Message keys are the source name so that one source's events stay ordered
// within a partition.
func (e *Emitter) Emit(ctx context.Context, records []*asset.Asset) (*common.BatchPublishResult, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "no assets to publish")
	}

	msgs := make([]*common.ProducerMessage, 0, (len(records)+e.chunkSize-1)/e.chunkSize)
	for start := 0; start < len(records); start += e.chunkSize {
		end := min(start+e.chunkSize, len(records))
		env, err := kafka.NewEventEnvelope(kafka.EventAssetSynced, SourceName, &SyncedEvent{
			Source: e.source,
			Assets: records[start:end],
		})
		if err != nil {
			return nil, err
		}
		env.Metadata = map[string]string{"chunk": fmt.Sprintf("%d-%d", start, end-1)}
		msg, err := env.ToMessage(e.topic, e.source)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return e.pub.PublishBatch(ctx, msgs)
}

//Personal.AI order the ending
