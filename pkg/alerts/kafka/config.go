package kafka

import (
	"os"
	"strings"
	"time"
)

type Driver string

const (
	DriverNone  Driver = "none"
	DriverKafka Driver = "kafka"
)

type AlertsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  Driver `yaml:"driver"`

	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`

	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

func (c AlertsConfig) active() bool {
	return c.Enabled && c.Driver == DriverKafka
}

func FromEnv() AlertsConfig {
	enabled := strings.ToLower(os.Getenv("ALERTS_ENABLED")) == "true"
	driver := Driver(strings.TrimSpace(os.Getenv("ALERTS_DRIVER")))
	if driver == "" {
		driver = DriverNone
	}
	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		brokers = "localhost:9092"
	}
	topic := strings.TrimSpace(os.Getenv("KAFKA_ALERT_TOPIC"))
	if topic == "" {
		topic = "pollution-alerts"
	}

	return AlertsConfig{
		Enabled:    enabled,
		Driver:     driver,
		Brokers:    split(brokers),
		Topic:      topic,
		ClientID:   "oceanwatch",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	}
}

func split(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}
