package simulate

import (
	"math"
	"math/rand"
	"time"

	"vane/internal/stations"
)

// Observation is one synthetic reading in the wire shape the station
// producers publish.
type Observation struct {
	StationID     string  `json:"city_id"`
	StationName   string  `json:"city_name"`
	Temperature   float64 `json:"temperature_celsius"`
	Humidity      float64 `json:"humidity_percent"`
	WindSpeed     float64 `json:"wind_speed_kmh"`
	Precipitation float64 `json:"precipitation_mm"`
	Timestamp     string  `json:"timestamp"`
}

type conditions struct {
	temperature   float64
	humidity      float64
	windSpeed     float64
	precipitation float64
}

// Generator random-walks one set of conditions per station. Same seed and
// fleet, same sequence.
type Generator struct {
	rng   *rand.Rand
	fleet []stations.Station
	state []conditions
}

func New(fleet []stations.Station, seed int64) *Generator {
	g := &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		fleet: fleet,
		state: make([]conditions, len(fleet)),
	}
	for i := range g.state {
		g.state[i] = conditions{
			temperature: g.rng.Float64()*30 - 5,
			humidity:    40 + g.rng.Float64()*40,
			windSpeed:   g.rng.Float64() * 25,
		}
	}
	return g
}

// Tick advances every station one step and reports the new conditions
// stamped with now.
func (g *Generator) Tick(now time.Time) []Observation {
	out := make([]Observation, 0, len(g.fleet))
	ts := now.UTC().Format(time.RFC3339)
	for i, st := range g.fleet {
		c := &g.state[i]
		c.temperature = clamp(c.temperature+g.step(1.5), -20, 50)
		c.humidity = clamp(c.humidity+g.step(4), 0, 100)
		c.windSpeed = clamp(c.windSpeed+g.step(3), 0, 90)
		c.precipitation = clamp(c.precipitation+g.step(0.8), 0, 25)
		out = append(out, Observation{
			StationID:     st.ID,
			StationName:   st.Name,
			Temperature:   round1(c.temperature),
			Humidity:      round1(c.humidity),
			WindSpeed:     round1(c.windSpeed),
			Precipitation: round1(c.precipitation),
			Timestamp:     ts,
		})
	}
	return out
}

func (g *Generator) step(scale float64) float64 {
	return (g.rng.Float64()*2 - 1) * scale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
