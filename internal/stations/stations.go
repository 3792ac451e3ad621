package stations

import "fmt"

// Station identifies one reporting weather station.
type Station struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// File is the on-disk fleet description.
type File struct {
	SchemaVersion string    `yaml:"schema_version"`
	Stations      []Station `yaml:"stations"`
}

// Default returns the demo fleet used when no fleet file is configured.
func Default() []Station {
	out := make([]Station, 0, 5)
	for i := 1; i <= 5; i++ {
		out = append(out, Station{
			ID:   fmt.Sprintf("city_%d", i),
			Name: fmt.Sprintf("Station %d", i),
		})
	}
	return out
}
