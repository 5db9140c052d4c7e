// Package weather looks up current conditions from OpenWeatherMap and
// derives the marine estimates the dashboards show (UV index, wave height,
// tide times).
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
	"github.com/mohammed-shakir/oceanwatch/internal/notify"
)

var (
	ErrInvalidCoordinates = errors.New("latitude must be within [-90,90] and longitude within [-180,180]")
	ErrUnavailable        = errors.New("weather data not available")
)

type Data struct {
	Location    string  `json:"location"`
	Temperature int     `json:"temperature"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Icon        string  `json:"icon"`
	UVIndex     int     `json:"uvIndex"`
	WaveHeight  float64 `json:"waveHeight"`
	HighTide    string  `json:"highTide"`
	LowTide     string  `json:"lowTide"`
}

type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Notifier  notify.Notifier
	Logger    *slog.Logger
	Now       func() time.Time
}

type Client struct {
	http     *http.Client
	base     *url.URL
	apiKey   string
	cache    *expirable.LRU[string, Data]
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time
}

func New(hc *http.Client, baseURL, apiKey string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse weather base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("weather base url must be http(s), got %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		http:     hc,
		base:     u,
		apiKey:   apiKey,
		cache:    expirable.NewLRU[string, Data](opts.CacheSize, nil, opts.CacheTTL),
		notifier: opts.Notifier,
		log:      opts.Logger.With("component", "weather"),
		now:      opts.Now,
	}, nil
}

type owmResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
}

// ByCoordinates returns conditions at lat/lng. Lookups are cached per
// coordinate rounded to two decimals; tide times are always relative to now.
func (c *Client) ByCoordinates(ctx context.Context, lat, lng float64) (Data, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Data{}, ErrInvalidCoordinates
	}
	key := cacheKey(lat, lng)
	if d, ok := c.cache.Get(key); ok {
		return c.withTides(d), nil
	}

	d, err := c.fetch(ctx, lat, lng)
	if err != nil {
		c.log.WarnContext(ctx, "failed to fetch weather data", "lat", lat, "lng", lng, "err", err)
		c.notifier.Notify(ctx, notify.Notification{
			Variant:     notify.VariantDestructive,
			Title:       "Error",
			Description: "Unable to load weather data",
		})
		return Data{}, err
	}
	c.cache.Add(key, d)
	return c.withTides(d), nil
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) (Data, error) {
	u := *c.base
	u.Path = path.Join(c.base.Path, "data", "2.5", "weather")
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Data{}, fmt.Errorf("build weather request: %w", err)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	observability.ObserveUpstreamLatency("weather", time.Since(start).Seconds())
	if err != nil {
		return Data{}, fmt.Errorf("weather request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Data{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var r owmResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&r); err != nil {
		return Data{}, fmt.Errorf("decode weather response: %w", err)
	}
	if len(r.Weather) == 0 {
		return Data{}, fmt.Errorf("%w: no conditions in response", ErrUnavailable)
	}
	w := r.Weather[0]
	return Data{
		Location:    r.Name,
		Temperature: int(math.Round(r.Main.Temp)),
		Description: w.Description,
		Humidity:    r.Main.Humidity,
		WindSpeed:   r.Wind.Speed,
		Icon:        w.Icon,
		UVIndex:     EstimateUVIndex(w.ID, r.Clouds.All),
		WaveHeight:  EstimateWaveHeight(r.Wind.Speed),
	}, nil
}

func (c *Client) withTides(d Data) Data {
	now := c.now()
	d.HighTide = TideTime(now, true)
	d.LowTide = TideTime(now, false)
	return d
}

// EstimateUVIndex guesses a UV index from the condition code (800+ is clear
// or cloudy sky, below that precipitation) and cloud cover percentage.
func EstimateUVIndex(weatherID int, cloudCover float64) int {
	base := 5.0
	if weatherID >= 800 {
		base = 10
	}
	return max(1, int(math.Round(base-cloudCover/20)))
}

// EstimateWaveHeight is a rough wave height in meters from wind speed (m/s).
func EstimateWaveHeight(windSpeed float64) float64 {
	return math.Round(windSpeed*0.2*10) / 10
}

// TideTime is a placeholder tide estimate: high tide six hours out, low tide
// twelve, formatted HH:MM.
func TideTime(now time.Time, high bool) string {
	offset := 12 * time.Hour
	if high {
		offset = 6 * time.Hour
	}
	return now.Add(offset).Format("15:04")
}

func cacheKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', 2, 64) + "," + strconv.FormatFloat(lng, 'f', 2, 64)
}
