package kafka

import "time"

// AlertEvent is the JSON value of one alert message; it is keyed by
// DetectionID so all alerts for a detection land on one partition.
type AlertEvent struct {
	Message     string    `json:"message"`
	Details     string    `json:"details"`
	Level       string    `json:"level"`
	DetectionID string    `json:"detection_id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	TS          time.Time `json:"ts"`
}
