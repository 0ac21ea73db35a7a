// Package common holds transport-neutral message types shared by the
// messaging infrastructure and its callers.
package common

import (
	"context"
	"time"
)

// ProducerMessage is an outbound record. Partition is honoured only when the
// writer uses a manual balancer.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
	Partition int
}

// Message is an inbound record handed to a MessageHandler.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Header returns the header value for key, or "" when absent.
func (m *Message) Header(key string) string {
	if m == nil || m.Headers == nil {
		return ""
	}
	return m.Headers[key]
}

// MessageHandler processes one inbound message. A returned error triggers
// retry and eventually dead-lettering.
type MessageHandler func(ctx context.Context, msg *Message) error

// BatchItemError records the failure of one message in a batch. Index is -1
// when the whole batch failed.
type BatchItemError struct {
	Index int
	Topic string
	Error string
}

// BatchPublishResult summarises a PublishBatch call.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// TopicConfig describes a topic to be created on the broker.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	Configs           map[string]string
}

//Personal.AI order the ending
