// Package catalog holds the fest's event list.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed events.yaml
var defaultEvents []byte

// Event is one competition of the fest. Title is the value clients submit
// in a registration's event list.
type Event struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Details     []string `yaml:"details" json:"details"`
}

type file struct {
	Events []Event `yaml:"events"`
}

// Catalog is an immutable, ordered set of events.
type Catalog struct {
	events []Event
	byID   map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultEvents)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Parse reads a YAML event catalog. IDs and titles must be present and
// unique.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(f.Events))}
	titles := make(map[string]struct{}, len(f.Events))

	for i, e := range f.Events {
		e.ID = strings.TrimSpace(e.ID)
		e.Title = strings.TrimSpace(e.Title)
		if e.ID == "" || e.Title == "" {
			return nil, fmt.Errorf("event #%d: id and title are required", i+1)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate event id %q", e.ID)
		}
		if _, dup := titles[e.Title]; dup {
			return nil, fmt.Errorf("duplicate event title %q", e.Title)
		}
		c.byID[e.ID] = len(c.events)
		titles[e.Title] = struct{}{}
		c.events = append(c.events, e)
	}

	return c, nil
}

// Events returns a copy of the events in catalog order.
func (c *Catalog) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Catalog) Get(id string) (Event, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Event{}, false
	}
	return c.events[i], true
}
