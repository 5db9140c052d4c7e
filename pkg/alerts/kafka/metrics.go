package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metricSet struct {
	msgs *prometheus.CounterVec
	send prometheus.Histogram
}

func newMetricSet(r prometheus.Registerer) *metricSet {
	m := &metricSet{
		msgs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alert_msgs_total",
				Help: "Pollution alert messages sent to Kafka by result.",
			},
			[]string{"result"},
		),
		send: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "alert_send_seconds",
				Help:    "Time to get a broker acknowledgement for one alert.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
		),
	}
	if r != nil {
		r.MustRegister(m.msgs, m.send)
	}
	return m
}
