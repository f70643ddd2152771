package venue

import (
	"os"
	"path/filepath"
	"testing"
)

const registryYAML = `sources:
  - id: rickshaw
    name: The Rickshaw
    url: https://rickshaw.example/shows
    address: 254 E Hastings St
    city: Vancouver
    category: music
    latitude: 49.2810
    longitude: -123.0979
    strategies:
      - name: show-rows
        container: .show-row
        titles: [".show-name"]
        dates: [".show-date"]
  - id: bar-none
    name: Bar None Club
    url: https://barnone.example
    address: 1222 Hamilton St
    city: Vancouver
    schedule:
      weekdays: [Thu, Fri, Sat]
      start_time: "21:00"
      title: House Night
  - id: neumos
    name: Neumos
    url: https://neumos.example/events
    address: 925 E Pike St
    city: Seattle
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "venues.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing registry file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	reg, err := Load(writeRegistry(t, registryYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 sources, got %d", reg.Len())
	}

	rickshaw, ok := reg.Get("rickshaw")
	if !ok {
		t.Fatal("rickshaw not found")
	}
	if rickshaw.City != "Vancouver" || rickshaw.Category != "music" {
		t.Errorf("rickshaw = %+v", rickshaw)
	}
	if len(rickshaw.Strategies) != 1 || rickshaw.Strategies[0].Container != ".show-row" {
		t.Errorf("strategies not decoded: %+v", rickshaw.Strategies)
	}

	barNone, _ := reg.Get("bar-none")
	if barNone.Schedule == nil {
		t.Fatal("schedule not decoded")
	}
	if barNone.Schedule.StartTime != "21:00" || len(barNone.Schedule.Weekdays) != 3 {
		t.Errorf("schedule = %+v", barNone.Schedule)
	}

	v := rickshaw.Venue()
	if v.Coordinates == nil || v.Coordinates.Latitude != 49.2810 {
		t.Errorf("coordinates not mapped: %+v", v.Coordinates)
	}

	neumos, _ := reg.Get("neumos")
	if neumos.Venue().Coordinates != nil {
		t.Error("sources without coordinates should map to nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New([]Source{{ID: "x"}}); err == nil {
		t.Error("source without a name should be rejected")
	}
	if _, err := New([]Source{{ID: "x", Name: "X"}, {ID: "x", Name: "X2"}}); err == nil {
		t.Error("duplicate IDs should be rejected")
	}
}

func TestByCity(t *testing.T) {
	reg, err := New([]Source{
		{ID: "a", Name: "A", City: "Vancouver"},
		{ID: "b", Name: "B", City: "Seattle"},
		{ID: "c", Name: "C", City: "Vancouver"},
		{ID: "d", Name: "D"},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	groups := reg.ByCity()
	if len(groups["Vancouver"]) != 2 {
		t.Errorf("Vancouver group = %d, want 2", len(groups["Vancouver"]))
	}
	if len(groups["Seattle"]) != 1 {
		t.Errorf("Seattle group = %d, want 1", len(groups["Seattle"]))
	}
	if len(groups["unknown"]) != 1 {
		t.Errorf("cityless sources should group under unknown, got %d", len(groups["unknown"]))
	}
}
