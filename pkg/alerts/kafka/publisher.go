// Package kafka publishes high-level pollution alerts to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
)

var ErrClosed = errors.New("alert publisher closed")

type Options struct {
	Logger   *slog.Logger
	Register prometheus.Registerer
}

// Publisher sends AlertEvents through a sarama SyncProducer. A disabled
// publisher accepts and drops every event.
type Publisher struct {
	log      *slog.Logger
	cfg      AlertsConfig
	producer sarama.SyncProducer
	ms       *metricSet
}

func New(cfg AlertsConfig, opts Options) (*Publisher, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if !cfg.active() {
		opts.Logger.Info("alert publisher disabled", "driver", cfg.Driver, "enabled", cfg.Enabled)
		return &Publisher{log: opts.Logger, cfg: cfg}, nil
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("alert publisher: at least one broker is required")
	}

	sp, err := sarama.NewSyncProducer(cfg.Brokers, producerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("sync producer: %w", err)
	}
	p := NewWithProducer(cfg, sp, opts)
	p.log.Info("kafka alert publisher started", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return p, nil
}

// NewWithProducer wraps an existing producer.
func NewWithProducer(cfg AlertsConfig, sp sarama.SyncProducer, opts Options) *Publisher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Publisher{
		log:      opts.Logger,
		cfg:      cfg,
		producer: sp,
		ms:       newMetricSet(opts.Register),
	}
}

func producerConfig(c AlertsConfig) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.ClientID = c.ClientID
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Retry.Max = c.MaxRetries
	if c.Timeout > 0 {
		cfg.Producer.Timeout = c.Timeout
		cfg.Net.DialTimeout = c.Timeout
	}
	return cfg
}

func (p *Publisher) Enabled() bool { return p.producer != nil }

func (p *Publisher) Publish(ctx context.Context, ev AlertEvent) error {
	if p.producer == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	start := time.Now()
	part, off, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.cfg.Topic,
		Key:   sarama.StringEncoder(ev.DetectionID),
		Value: sarama.ByteEncoder(b),
	})
	p.ms.send.Observe(time.Since(start).Seconds())
	observability.IncAlertPublish(err)
	if err != nil {
		p.ms.msgs.WithLabelValues("error").Inc()
		return fmt.Errorf("send alert for detection %s: %w", ev.DetectionID, err)
	}
	p.ms.msgs.WithLabelValues("ok").Inc()
	p.log.DebugContext(ctx, "alert published",
		"detection_id", ev.DetectionID, "partition", part, "offset", off)
	return nil
}

func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close producer: %w", err)
	}
	p.log.Info("kafka alert publisher stopped")
	return nil
}
