package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func mockConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return cfg
}

func TestPublish_EncodesEventAndKeysByDetection(t *testing.T) {
	sp := mocks.NewSyncProducer(t, mockConfig())
	defer func() { _ = sp.Close() }()

	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "pollution-alerts" {
			return fmt.Errorf("topic=%s", msg.Topic)
		}
		k, _ := msg.Key.Encode()
		if string(k) != "10" {
			return fmt.Errorf("key=%s", k)
		}
		v, _ := msg.Value.Encode()
		var ev AlertEvent
		if err := json.Unmarshal(v, &ev); err != nil {
			return err
		}
		if ev.Message != "Alert: 1 high-level pollution detected!" || ev.Details != "Oil slick" || ev.Level != "high" {
			return fmt.Errorf("event=%+v", ev)
		}
		if ev.TS.IsZero() {
			return errors.New("ts not set")
		}
		return nil
	})

	reg := prometheus.NewRegistry()
	p := NewWithProducer(AlertsConfig{Enabled: true, Driver: DriverKafka, Topic: "pollution-alerts"}, sp, Options{Register: reg})
	err := p.Publish(context.Background(), AlertEvent{
		Message:     "Alert: 1 high-level pollution detected!",
		Details:     "Oil slick",
		Level:       "high",
		DetectionID: "10",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := testutil.ToFloat64(p.ms.msgs.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok count=%v", got)
	}
}

func TestPublish_BrokerErrorIsWrapped(t *testing.T) {
	sp := mocks.NewSyncProducer(t, mockConfig())
	defer func() { _ = sp.Close() }()
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewWithProducer(AlertsConfig{Topic: "t"}, sp, Options{Register: prometheus.NewRegistry()})
	err := p.Publish(context.Background(), AlertEvent{DetectionID: "12", TS: time.Now()})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("err=%v want ErrOutOfBrokers", err)
	}
	if got := testutil.ToFloat64(p.ms.msgs.WithLabelValues("error")); got != 1 {
		t.Fatalf("error count=%v", got)
	}
}

func TestPublish_CanceledContextSkipsSend(t *testing.T) {
	sp := mocks.NewSyncProducer(t, mockConfig())
	defer func() { _ = sp.Close() }()
	p := NewWithProducer(AlertsConfig{Topic: "t"}, sp, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, AlertEvent{DetectionID: "1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestNew_DisabledIsNoop(t *testing.T) {
	p, err := New(AlertsConfig{Enabled: false, Driver: DriverKafka}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Enabled() {
		t.Fatalf("disabled publisher reports enabled")
	}
	if err := p.Publish(context.Background(), AlertEvent{DetectionID: "1"}); err != nil {
		t.Fatalf("noop Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("noop Close: %v", err)
	}

	if _, err := New(AlertsConfig{Enabled: true, Driver: DriverKafka}, Options{}); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("ALERTS_ENABLED", "")
	t.Setenv("ALERTS_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_ALERT_TOPIC", "")
	c := FromEnv()
	if c.Enabled || c.Driver != DriverNone || c.Topic != "pollution-alerts" ||
		len(c.Brokers) != 1 || c.Brokers[0] != "localhost:9092" {
		t.Fatalf("defaults=%+v", c)
	}

	t.Setenv("ALERTS_ENABLED", "TRUE")
	t.Setenv("ALERTS_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	c = FromEnv()
	if !c.active() || len(c.Brokers) != 2 || c.Brokers[1] != "b:9092" {
		t.Fatalf("env=%+v", c)
	}
}
