package weather

import (
	"strconv"
	"time"
)

// Wire field names used by the station feeds.
const (
	fieldStationID     = "city_id"
	fieldStationName   = "city_name"
	fieldTemperature   = "temperature_celsius"
	fieldHumidity      = "humidity_percent"
	fieldWindSpeed     = "wind_speed_kmh"
	fieldPrecipitation = "precipitation_mm"
	fieldTimestamp     = "timestamp"
)

// Reading is one projected station measurement.
type Reading struct {
	StationID     string    `json:"station_id"`
	StationName   string    `json:"station_name,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Temperature   float64   `json:"temperature_celsius"`
	Humidity      float64   `json:"humidity_percent"`
	WindSpeed     float64   `json:"wind_speed_kmh"`
	Precipitation float64   `json:"precipitation_mm"`
}

// project converts one raw record value into a Reading. A value without a
// station id is unusable and reports ok=false. Malformed gauges degrade
// to zero and an unparseable timestamp degrades to the zero instant.
func project(v map[string]any) (Reading, bool) {
	id := stringField(v, fieldStationID)
	if id == "" {
		return Reading{}, false
	}
	ts, _ := parseTimestamp(stringField(v, fieldTimestamp))
	return Reading{
		StationID:     id,
		StationName:   stringField(v, fieldStationName),
		Timestamp:     ts,
		Temperature:   floatField(v, fieldTemperature),
		Humidity:      floatField(v, fieldHumidity),
		WindSpeed:     floatField(v, fieldWindSpeed),
		Precipitation: floatField(v, fieldPrecipitation),
	}, true
}

func stringField(v map[string]any, key string) string {
	s, _ := v[key].(string)
	return s
}

func floatField(v map[string]any, key string) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Producers are not consistent about zone suffixes; zoneless layouts are
// read as UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
