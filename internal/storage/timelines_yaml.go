package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"driftglow/internal/core/model"
	"gopkg.in/yaml.v3"
)

const timelineDirName = "timelines"

type yamlTimeline struct {
	ID              string              `yaml:"id"`
	Name            string              `yaml:"name"`
	Description     string              `yaml:"description,omitempty"`
	DurationMinutes int                 `yaml:"duration_minutes"`
	Events          []yamlTimelineEvent `yaml:"events"`
	PhrasePools     map[string][]string `yaml:"phrase_pools,omitempty"`
}

type yamlTimelineEvent struct {
	ID       string `yaml:"id"`
	Feature  string `yaml:"feature"`
	Kind     string `yaml:"kind"`
	Minute   int    `yaml:"minute"`
	PairedID string `yaml:"paired_id,omitempty"`
}

// SaveTimeline writes a timeline into the library as a YAML document named
// after the timeline.
func SaveTimeline(configDir string, timeline *model.Timeline) error {
	dir := filepath.Join(configDir, timelineDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create timeline directory: %w", err)
	}

	fileData := yamlTimeline{
		ID:              timeline.ID,
		Name:            timeline.Name,
		Description:     timeline.Description,
		DurationMinutes: timeline.DurationMinutes,
		PhrasePools:     timeline.PhrasePools,
	}
	for _, event := range timeline.Events {
		fileData.Events = append(fileData.Events, yamlTimelineEvent{
			ID:       event.ID,
			Feature:  string(event.Feature),
			Kind:     string(event.Kind),
			Minute:   event.Minute,
			PairedID: event.PairedID,
		})
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal timeline yaml: %w", err)
	}

	path := filepath.Join(dir, fileNameFor(timeline.Name))
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write timeline file: %w", err)
	}
	return nil
}

// LoadTimeline reads one timeline from the library by name. The loaded
// timeline is normalized, so malformed files cannot hand the engine orphan
// stops or out-of-range minutes.
func LoadTimeline(configDir, name string) (*model.Timeline, error) {
	path := filepath.Join(configDir, timelineDirName, fileNameFor(name))
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline file: %w", err)
	}

	var fileData yamlTimeline
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return nil, fmt.Errorf("parse timeline yaml: %w", err)
	}

	timeline := &model.Timeline{
		ID:              fileData.ID,
		Name:            fileData.Name,
		Description:     fileData.Description,
		DurationMinutes: fileData.DurationMinutes,
		PhrasePools:     fileData.PhrasePools,
	}
	for _, event := range fileData.Events {
		timeline.Events = append(timeline.Events, model.Event{
			ID:       event.ID,
			Feature:  model.FeatureID(event.Feature),
			Kind:     model.EventKind(event.Kind),
			Minute:   event.Minute,
			PairedID: event.PairedID,
		})
	}

	timeline.Normalize()
	return timeline, nil
}

// ListTimelines returns the names of all timelines in the library.
func ListTimelines(configDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(configDir, timelineDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read timeline directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

func fileNameFor(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if cleaned == "" {
		cleaned = "timeline"
	}
	return cleaned + ".yaml"
}
