package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vane/internal/stations"
)

// LoadStations parses a station fleet YAML, validates schema_version, and
// returns the declared fleet. An empty path yields the default fleet; a
// configured path must exist.
func LoadStations(path string) ([]stations.Station, error) {
	if path == "" {
		return stations.Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f stations.File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if f.SchemaVersion == "" {
		f.SchemaVersion = SupportedSchema
	}
	if f.SchemaVersion != SupportedSchema {
		return nil, fmt.Errorf("stations schema_version %q not supported (want %q)", f.SchemaVersion, SupportedSchema)
	}
	if len(f.Stations) == 0 {
		return nil, errors.New("stations file declares no stations")
	}
	for i, st := range f.Stations {
		if st.ID == "" {
			return nil, fmt.Errorf("station %d: missing id", i+1)
		}
	}
	return f.Stations, nil
}
