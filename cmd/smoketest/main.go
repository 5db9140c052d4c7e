// Command smoketest checks connectivity to the services oceanwatch talks to:
// Redis, the GeoJSON asset host and Kafka, plus a sanity check of the H3
// bindings.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
	h3 "github.com/uber/h3-go/v4"
)

func getenv(key, def string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return def
}

func testRedis(ctx context.Context, addr string) error {
	fmt.Println("Redis test")
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})
	defer func() { _ = client.Close() }()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	if err := client.Set(ctx, "oceanwatch:smoke", "ok", 30*time.Second).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	val, err := client.Get(ctx, "oceanwatch:smoke").Result()
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	fmt.Println("redis GET oceanwatch:smoke:", val)
	return nil
}

func testAssets(ctx context.Context, baseURL string) error {
	fmt.Println("GeoJSON asset test")

	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/geojson_files/file0.geojson")
	if err != nil {
		return fmt.Errorf("bad asset URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get asset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("asset status %d: %s", resp.StatusCode, string(b))
	}

	var entries []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("decode asset: %w", err)
	}
	fmt.Printf("file0.geojson: %d entries\n", len(entries))
	return nil
}

func testKafka(brokers []string, topic string) error {
	fmt.Println("Kafka test")

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Version = sarama.V3_6_0_0
	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("producer create: %w", err)
	}
	defer func() { _ = prod.Close() }()

	payload := map[string]any{
		"message":      "smoke test",
		"details":      "connectivity check",
		"level":        "low",
		"detection_id": "smoke",
		"ts":           time.Now().UTC().Format(time.RFC3339Nano),
	}
	msgBytes, _ := json.Marshal(payload)
	partition, offset, err := prod.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder("smoke"),
		Value: sarama.ByteEncoder(msgBytes),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	fmt.Printf("produced one message (partition %d, offset %d)\n", partition, offset)

	consumer, err := sarama.NewConsumer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("consumer create: %w", err)
	}
	defer func() { _ = consumer.Close() }()

	pc, err := consumer.ConsumePartition(topic, partition, offset)
	if err != nil {
		return fmt.Errorf("consume partition: %w", err)
	}
	defer func() { _ = pc.Close() }()

	select {
	case m := <-pc.Messages():
		fmt.Println("consumed:", string(m.Value))
	case <-time.After(5 * time.Second):
		fmt.Println("no message consumed (timeout)")
	}
	return nil
}

func demoH3() error {
	fmt.Println("H3 demo")
	// Roatán, the monitored target area
	ll := h3.NewLatLng(15.975562, -87.623357)
	cell, err := h3.LatLngToCell(ll, 8)
	if err != nil {
		return fmt.Errorf("latlng to cell: %w", err)
	}
	neighbors, err := h3.GridDisk(cell, 1)
	if err != nil {
		return fmt.Errorf("grid disk: %w", err)
	}
	fmt.Printf("H3 center: %s, neighbors: %d\n", cell.String(), len(neighbors))
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	assets := getenv("ASSET_BASE_URL", "http://localhost:5173")
	brokers := strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := getenv("KAFKA_ALERT_TOPIC", "pollution-alerts")

	if err := testRedis(ctx, redisAddr); err != nil {
		fmt.Println("Redis error:", err)
		os.Exit(1)
	}
	if err := testAssets(ctx, assets); err != nil {
		fmt.Println("Asset error:", err)
		os.Exit(1)
	}
	if err := testKafka(brokers, topic); err != nil {
		fmt.Println("Kafka error:", err)
		os.Exit(1)
	}
	if err := demoH3(); err != nil {
		fmt.Println("H3 error:", err)
		os.Exit(1)
	}
	fmt.Println("All checks completed")
}
