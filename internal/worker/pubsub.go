package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	ingestJob        *IngestJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	IngestJob        *IngestJob
	Logger           zerolog.Logger
}

// IngestMessage represents an ingestion job message.
type IngestMessage struct {
	JobType    string   `json:"job_type"`
	Indicators []string `json:"indicators,omitempty"`
	Days       int      `json:"days,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		ingestJob:        cfg.IngestJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	// Parse message.
	var ingestMsg IngestMessage
	if err := json.Unmarshal(msg.Data, &ingestMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	// Handle based on job type.
	var err error
	switch ingestMsg.JobType {
	case "qualar_ingest":
		err = h.handleIngest(ctx, ingestMsg)
	default:
		logger.Warn().Str("job_type", ingestMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", ingestMsg.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleIngest(ctx context.Context, msg IngestMessage) error {
	job := h.ingestJob
	if len(msg.Indicators) > 0 || msg.Days > 0 {
		// Message-level overrides get a one-off job with the same wiring.
		config := job.config
		if len(msg.Indicators) > 0 {
			config.Indicators = msg.Indicators
		}
		if msg.Days > 0 {
			config.Days = msg.Days
		}
		override, err := NewIngestJob(IngestJobConfig{
			Config:          config,
			Logger:          h.logger,
			Exporter:        job.exporter,
			Repository:      job.repository,
			Registry:        job.registry,
			ProviderMetrics: job.providerMetrics,
		})
		if err != nil {
			return err
		}
		job = override
	}

	result := job.Run(ctx)

	// Consider it successful if more than half of the tasks succeeded.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many ingestion failures: %d/%d", result.Failed, result.TotalTasks)
	}

	return nil
}
