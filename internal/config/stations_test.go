package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStations_EmptyPathYieldsDefaultFleet(t *testing.T) {
	fleet, err := LoadStations("")
	if err != nil {
		t.Fatalf("LoadStations: %v", err)
	}
	if len(fleet) != 5 {
		t.Fatalf("expected 5 default stations, got %d", len(fleet))
	}
	if fleet[0].ID != "city_1" || fleet[0].Name != "Station 1" {
		t.Fatalf("unexpected first station: %+v", fleet[0])
	}
}

func TestLoadStations_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`schema_version: v1
stations:
  - id: city_1
    name: Harbor
  - id: city_2
    name: Uptown
`)
	path := filepath.Join(dir, "fleet.yml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write fleet: %v", err)
	}

	fleet, err := LoadStations(path)
	if err != nil {
		t.Fatalf("LoadStations: %v", err)
	}
	if len(fleet) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(fleet))
	}
	if fleet[1].ID != "city_2" || fleet[1].Name != "Uptown" {
		t.Fatalf("unexpected station: %+v", fleet[1])
	}
}

func TestLoadStations_Rejections(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad schema": "schema_version: v2\nstations: [{id: city_1}]\n",
		"no entries": "schema_version: v1\nstations: []\n",
		"missing id": "schema_version: v1\nstations: [{name: Nameless}]\n",
	}
	for name, raw := range cases {
		path := filepath.Join(dir, "fleet.yml")
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatalf("write fleet: %v", err)
		}
		if _, err := LoadStations(path); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestLoadStations_ConfiguredPathMustExist(t *testing.T) {
	if _, err := LoadStations(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected an error for a configured but missing fleet file")
	}
}
