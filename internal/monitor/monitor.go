// Package monitor simulates the real-time pollution feed: a detection list
// with running statistics, ocean hotspots, sea activities and alerts, updated
// on a configurable interval.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"time"
)

const (
	DefaultInterval = 10 * time.Second
	MinInterval     = time.Second

	// newDetectionThreshold: an update adds a detection when a uniform draw
	// exceeds it.
	newDetectionThreshold = 0.7

	defaultMaxDetections = 500
	defaultMaxAlerts     = 100
)

var ErrIntervalTooShort = errors.New("update interval must be at least 1s")

// Rand is the randomness an update draws from; *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Publisher forwards high-level alerts to an external channel.
type Publisher interface {
	Publish(ctx context.Context, a Alert, d Detection) error
}

type Options struct {
	Interval      time.Duration
	RealTime      bool
	Rand          Rand
	Publisher     Publisher
	Logger        *slog.Logger
	Now           func() time.Time
	MaxDetections int
	MaxAlerts     int
}

type State struct {
	Detections []Detection `json:"detections"`
	Statistics Statistics  `json:"statistics"`
	Hotspots   []Hotspot   `json:"hotspots"`
	Activities []Activity  `json:"activities"`
	Alerts     []Alert     `json:"alerts"`
	RealTime   bool        `json:"isRealTimeUpdates"`
	// Interval is in seconds.
	Interval int `json:"updateInterval"`
}

type Monitor struct {
	opts    Options
	log     *slog.Logger
	changed chan struct{}

	mu         sync.Mutex
	rnd        Rand
	nextID     int
	detections []Detection
	stats      Statistics
	hotspots   []Hotspot
	activities []Activity
	alerts     []Alert
	realTime   bool
	interval   time.Duration
}

func New(opts Options) *Monitor {
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	opts.Interval = max(opts.Interval, MinInterval)
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxDetections <= 0 {
		opts.MaxDetections = defaultMaxDetections
	}
	if opts.MaxAlerts <= 0 {
		opts.MaxAlerts = defaultMaxAlerts
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		opts:       opts,
		log:        log.With("component", "monitor"),
		changed:    make(chan struct{}, 1),
		rnd:        opts.Rand,
		nextID:     len(seedDetections()) + 1,
		detections: seedDetections(),
		stats:      seedStatistics(),
		hotspots:   seedHotspots(),
		activities: seedActivities(),
		alerts:     []Alert{{Message: highAlertMessage, Details: "Large debris cluster"}},
		realTime:   opts.RealTime,
		interval:   opts.Interval,
	}
}

func (m *Monitor) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Detections: slices.Clone(m.detections),
		Statistics: m.stats,
		Hotspots:   slices.Clone(m.hotspots),
		Activities: slices.Clone(m.activities),
		Alerts:     slices.Clone(m.alerts),
		RealTime:   m.realTime,
		Interval:   int(m.interval / time.Second),
	}
}

// ToggleRealTime flips periodic updates and returns the new setting.
func (m *Monitor) ToggleRealTime() bool {
	m.mu.Lock()
	m.realTime = !m.realTime
	on := m.realTime
	m.mu.Unlock()
	m.signal()
	return on
}

func (m *Monitor) SetInterval(d time.Duration) error {
	if d < MinInterval {
		return ErrIntervalTooShort
	}
	m.mu.Lock()
	m.interval = d
	m.mu.Unlock()
	m.signal()
	return nil
}

// ManualUpdate simulates polling for new data. Roughly three updates in ten
// yield a new detection; a high-level one raises and publishes an alert.
func (m *Monitor) ManualUpdate(ctx context.Context) (Detection, bool) {
	m.mu.Lock()
	if m.rnd.Float64() <= newDetectionThreshold {
		m.mu.Unlock()
		return Detection{}, false
	}
	d := Detection{
		ID:        strconv.Itoa(m.nextID),
		Type:      pollutionTypes[m.rnd.IntN(len(pollutionTypes))],
		Level:     levels[m.rnd.IntN(len(levels))],
		Timestamp: m.opts.Now(),
		Location: LatLng{
			Lat: m.rnd.Float64()*140 - 70,
			Lng: m.rnd.Float64()*360 - 180,
		},
	}
	m.nextID++
	m.detections = slices.Insert(m.detections, 0, d)
	if len(m.detections) > m.opts.MaxDetections {
		m.detections = m.detections[:m.opts.MaxDetections]
	}

	m.stats.TotalDetections++
	m.stats.RecentDetections++
	switch d.Level {
	case LevelHigh:
		m.stats.HighCount++
	case LevelMedium:
		m.stats.MediumCount++
	case LevelLow:
		m.stats.LowCount++
	}

	var alert *Alert
	if d.Level == LevelHigh {
		a := Alert{Message: highAlertMessage, Details: d.Type}
		m.alerts = append(m.alerts, a)
		if over := len(m.alerts) - m.opts.MaxAlerts; over > 0 {
			m.alerts = slices.Delete(m.alerts, 0, over)
		}
		alert = &a
	}
	m.mu.Unlock()

	m.log.DebugContext(ctx, "new detection", "id", d.ID, "type", d.Type, "level", string(d.Level))
	if alert != nil && m.opts.Publisher != nil {
		if err := m.opts.Publisher.Publish(ctx, *alert, d); err != nil {
			m.log.WarnContext(ctx, "publish pollution alert", "detection_id", d.ID, "err", err)
		}
	}
	return d, true
}

// DismissAlert removes the alert at index; out of range is a no-op.
func (m *Monitor) DismissAlert(index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.alerts) {
		return false
	}
	m.alerts = slices.Delete(m.alerts, index, index+1)
	return true
}

// AddActivity prepends a with the next id and returns the stored activity.
func (m *Monitor) AddActivity(a Activity) Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = strconv.Itoa(len(m.activities) + 1)
	m.activities = slices.Insert(m.activities, 0, a)
	return a
}

// Run drives ManualUpdate on the configured interval while real-time updates
// are on, picking up toggle and interval changes. It returns when ctx ends.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		m.mu.Lock()
		on, every := m.realTime, m.interval
		m.mu.Unlock()

		if err := m.runPhase(ctx, on, every); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

func (m *Monitor) runPhase(ctx context.Context, on bool, every time.Duration) error {
	var tick <-chan time.Time
	if on {
		t := time.NewTicker(every)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.changed:
			return nil
		case <-tick:
			m.ManualUpdate(ctx)
		}
	}
}

func (m *Monitor) signal() {
	select {
	case m.changed <- struct{}{}:
	default:
	}
}
