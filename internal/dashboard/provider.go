package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"vane/internal/logging"
	"vane/internal/stations"
	"vane/internal/telemetry"
	"vane/internal/weather"
)

// Extractor covers the two feed extractions a snapshot needs.
// *weather.Extractor satisfies this.
type Extractor interface {
	Latest(ctx context.Context, sub weather.Subscription, n int) ([]weather.Reading, error)
	Window(ctx context.Context, sub weather.Subscription, window time.Duration) ([]weather.Reading, error)
}

type Config struct {
	Live    weather.Subscription
	Latest  int // readings kept from the live feed
	History weather.Subscription
	Window  time.Duration
	Fleet   []stations.Station
}

// StationPanel carries the gauge values for one registered station.
type StationPanel struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Temperature   float64 `json:"temperature_celsius"`
	Humidity      float64 `json:"humidity_percent"`
	WindSpeed     float64 `json:"wind_speed_kmh"`
	Precipitation float64 `json:"precipitation_mm"`
}

type TrendPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature_celsius"`
}

// TrendSeries is one station's temperature trail in chronological order.
type TrendSeries struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Points []TrendPoint `json:"points"`
}

// Snapshot is one dashboard refresh. When Available is false the panels
// hold placeholder values only.
type Snapshot struct {
	Available bool              `json:"available"`
	UpdatedAt time.Time         `json:"updated_at"`
	Stations  []StationPanel    `json:"stations"`
	Trends    []TrendSeries     `json:"trends,omitempty"`
	Latest    []weather.Reading `json:"latest,omitempty"`
}

// Provider builds snapshots on demand. It holds no state between
// refreshes; every snapshot is assembled from two fresh feed cycles.
type Provider struct {
	cfg   Config
	ex    Extractor
	names map[string]string // station id -> registered name
	sf    singleflight.Group
}

func NewProvider(cfg Config, ex Extractor) *Provider {
	names := make(map[string]string, len(cfg.Fleet))
	for _, st := range cfg.Fleet {
		names[st.ID] = st.Name
	}
	return &Provider{cfg: cfg, ex: ex, names: names}
}

// Snapshot assembles one refresh. Concurrent callers share a single
// build, and the build runs detached from any one caller's context.
func (p *Provider) Snapshot(ctx context.Context) Snapshot {
	v, _, _ := p.sf.Do("snapshot", func() (any, error) {
		return p.build(context.WithoutCancel(ctx)), nil
	})
	return v.(Snapshot)
}

func (p *Provider) build(ctx context.Context) Snapshot {
	var (
		wg     sync.WaitGroup
		latest []weather.Reading
		trail  []weather.Reading
		lerr   error
		werr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		latest, lerr = p.ex.Latest(ctx, p.cfg.Live, p.cfg.Latest)
	}()
	go func() {
		defer wg.Done()
		trail, werr = p.ex.Window(ctx, p.cfg.History, p.cfg.Window)
	}()
	wg.Wait()

	snap := Snapshot{UpdatedAt: time.Now().UTC()}

	// A refresh renders either completely or not at all: one failing or
	// empty feed blanks the whole snapshot.
	if lerr != nil || werr != nil || len(trail) == 0 {
		if lerr != nil {
			logging.L().Warn("dashboard: live feed unavailable", "err", lerr)
		}
		if werr != nil {
			logging.L().Warn("dashboard: history feed unavailable", "err", werr)
		}
		telemetry.Snapshots.WithLabelValues("unavailable").Inc()
		snap.Stations = p.placeholderPanels()
		return snap
	}

	byID := make(map[string]weather.Reading, len(latest))
	for _, r := range latest {
		byID[r.StationID] = r // later delivery wins
	}

	panels := make([]StationPanel, 0, len(p.cfg.Fleet))
	for i, st := range p.cfg.Fleet {
		panel := StationPanel{ID: st.ID, Name: panelName(st, i)}
		if r, ok := byID[st.ID]; ok {
			if r.StationName != "" {
				panel.Name = r.StationName
			}
			panel.Temperature = r.Temperature
			panel.Humidity = r.Humidity
			panel.WindSpeed = r.WindSpeed
			panel.Precipitation = r.Precipitation
		}
		panels = append(panels, panel)
	}

	// trail is sorted by station then time, so series build up
	// sequentially. Unregistered stations get a series too.
	var trends []TrendSeries
	for _, r := range trail {
		if len(trends) == 0 || trends[len(trends)-1].ID != r.StationID {
			trends = append(trends, TrendSeries{ID: r.StationID, Name: p.seriesName(r)})
		}
		s := &trends[len(trends)-1]
		s.Points = append(s.Points, TrendPoint{Timestamp: r.Timestamp, Temperature: r.Temperature})
	}

	telemetry.Snapshots.WithLabelValues("ok").Inc()
	snap.Available = true
	snap.Stations = panels
	snap.Trends = trends
	snap.Latest = latest
	return snap
}

func (p *Provider) placeholderPanels() []StationPanel {
	out := make([]StationPanel, 0, len(p.cfg.Fleet))
	for i, st := range p.cfg.Fleet {
		out = append(out, StationPanel{ID: st.ID, Name: panelName(st, i)})
	}
	return out
}

func panelName(st stations.Station, i int) string {
	if st.Name != "" {
		return st.Name
	}
	return fmt.Sprintf("Station %d", i+1)
}

func (p *Provider) seriesName(r weather.Reading) string {
	if r.StationName != "" {
		return r.StationName
	}
	if name := p.names[r.StationID]; name != "" {
		return name
	}
	return r.StationID
}
