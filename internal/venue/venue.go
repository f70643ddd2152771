// Package venue holds the source registry: one configuration record per
// scraped venue, loaded from YAML. The registry replaces per-venue code with
// data — extraction strategies, addresses, and recurring schedules are all
// plain configuration consumed by the generic pipeline.
package venue

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mbertelsen/citypulse/internal/event"
)

// Strategy is one ranked selector group for the extractor cascade. Earlier
// strategies win; the first group whose container selector matches anything
// claims the page.
type Strategy struct {
	Name      string   `koanf:"name"`
	Container string   `koanf:"container"`
	Titles    []string `koanf:"titles"`
	Dates     []string `koanf:"dates"`
}

// Schedule marks a source as schedule-based rather than listing-based: the
// venue plays on a fixed weekly cadence and its page carries no per-event
// dates worth scraping.
type Schedule struct {
	Weekdays  []string `koanf:"weekdays"`
	StartTime string   `koanf:"start_time"`
	Title     string   `koanf:"title"`
}

// Source is the full per-venue configuration record.
type Source struct {
	ID         string     `koanf:"id"`
	Name       string     `koanf:"name"`
	URL        string     `koanf:"url"`
	Address    string     `koanf:"address"`
	City       string     `koanf:"city"`
	Category   string     `koanf:"category"`
	Latitude   float64    `koanf:"latitude"`
	Longitude  float64    `koanf:"longitude"`
	Schedule   *Schedule  `koanf:"schedule"`
	Strategies []Strategy `koanf:"strategies"`
}

// Venue returns the catalog venue metadata for this source.
func (s Source) Venue() event.Venue {
	v := event.Venue{
		Name:    s.Name,
		Address: s.Address,
		City:    s.City,
	}
	if s.Latitude != 0 || s.Longitude != 0 {
		v.Coordinates = &event.Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
	}
	return v
}

// Registry is the loaded source table, addressed by ID.
type Registry struct {
	sources []Source
	byID    map[string]Source
}

// Load reads the registry from a YAML file.
func Load(path string) (*Registry, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading venues file: %w", err)
	}

	var cfg struct {
		Sources []Source `koanf:"sources"`
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing venues file: %w", err)
	}

	return New(cfg.Sources)
}

// New builds a registry from already-decoded sources.
func New(sources []Source) (*Registry, error) {
	byID := make(map[string]Source, len(sources))
	for _, s := range sources {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("source %q: id and name are required", s.ID)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate source id: %s", s.ID)
		}
		byID[s.ID] = s
	}
	return &Registry{sources: sources, byID: byID}, nil
}

// Get returns a source by ID.
func (r *Registry) Get(id string) (Source, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// All returns every configured source.
func (r *Registry) All() []Source {
	return r.sources
}

// Len reports the number of configured sources.
func (r *Registry) Len() int {
	return len(r.sources)
}

// ByCity groups sources by city. Ingest runs cities in parallel and the
// sources within one city sequentially, bounding simultaneous load per site
// neighborhood.
func (r *Registry) ByCity() map[string][]Source {
	groups := make(map[string][]Source)
	for _, s := range r.sources {
		city := strings.TrimSpace(s.City)
		if city == "" {
			city = "unknown"
		}
		groups[city] = append(groups[city], s)
	}
	return groups
}
