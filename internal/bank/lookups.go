package bank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Topic is a display lookup for one syllabus topic.
type Topic struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Component is a display lookup for one question component axis.
type Component struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Abbr  string `json:"abbr"`
	Order int    `json:"order"`
	Color string `json:"color"`
}

// Lookups holds the read-only display tables the presentation layer renders
// filters and legends from. Loaded once at startup.
type Lookups struct {
	Topics     []Topic
	Components []Component
	Priorities map[string]string // key → label
}

// LoadLookups reads topics.json, components.json and priorities.json from
// dir. Components come back sorted by their order field.
func LoadLookups(dir string) (*Lookups, error) {
	var topics struct {
		Topics []Topic `json:"topics"`
	}
	if err := readJSON(filepath.Join(dir, "topics.json"), &topics); err != nil {
		return nil, err
	}

	var components struct {
		Components []Component `json:"components"`
	}
	if err := readJSON(filepath.Join(dir, "components.json"), &components); err != nil {
		return nil, err
	}
	sort.Slice(components.Components, func(i, j int) bool {
		return components.Components[i].Order < components.Components[j].Order
	})

	var priorities struct {
		Priorities []struct {
			Key   string `json:"key"`
			Label string `json:"label"`
		} `json:"priorities"`
	}
	if err := readJSON(filepath.Join(dir, "priorities.json"), &priorities); err != nil {
		return nil, err
	}
	prioMap := make(map[string]string, len(priorities.Priorities))
	for _, p := range priorities.Priorities {
		prioMap[p.Key] = p.Label
	}

	return &Lookups{
		Topics:     topics.Topics,
		Components: components.Components,
		Priorities: prioMap,
	}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
