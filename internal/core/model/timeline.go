package model

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FeatureID names a toggleable effect. The engine treats it as an opaque key.
type FeatureID string

// EventKind distinguishes start and stop markers.
type EventKind string

const (
	EventStart EventKind = "start"
	EventStop  EventKind = "stop"
)

var (
	// ErrUnknownEvent indicates the referenced event is not part of the timeline.
	ErrUnknownEvent = errors.New("event not in timeline")
	// ErrNotStartEvent indicates a stop was attached to something other than a start.
	ErrNotStartEvent = errors.New("paired event is not a start")
)

// Event is a single start or stop marker anchored to a minute offset.
type Event struct {
	ID       string
	Feature  FeatureID
	Kind     EventKind
	Minute   int
	PairedID string
}

// Timeline describes a bounded session: paired start/stop events per feature
// plus named phrase pools consumed by text-emitting features.
type Timeline struct {
	ID              string
	Name            string
	Description     string
	DurationMinutes int
	Events          []Event
	PhrasePools     map[string][]string
}

// NewTimeline creates an empty timeline with a generated ID.
func NewTimeline(name string, durationMinutes int) *Timeline {
	if durationMinutes < 1 {
		durationMinutes = 1
	}
	return &Timeline{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(name),
		DurationMinutes: durationMinutes,
		PhrasePools:     map[string][]string{},
	}
}

// AddStart appends a start event, clamping the minute into [0, duration].
func (timeline *Timeline) AddStart(feature FeatureID, minute int) Event {
	event := Event{
		ID:      uuid.NewString(),
		Feature: feature,
		Kind:    EventStart,
		Minute:  timeline.clampMinute(minute),
	}
	timeline.Events = append(timeline.Events, event)
	return event
}

// AddStop appends a stop event paired with the given start. The minute is
// forced past the start: a stop at or before its start is clamped to
// min(start.Minute+1, duration).
func (timeline *Timeline) AddStop(startID string, minute int) (Event, error) {
	startIndex := timeline.indexOf(startID)
	if startIndex < 0 {
		return Event{}, ErrUnknownEvent
	}
	start := timeline.Events[startIndex]
	if start.Kind != EventStart {
		return Event{}, ErrNotStartEvent
	}

	minute = timeline.clampMinute(minute)
	if minute <= start.Minute {
		minute = start.Minute + 1
		if minute > timeline.DurationMinutes {
			minute = timeline.DurationMinutes
		}
	}

	stop := Event{
		ID:       uuid.NewString(),
		Feature:  start.Feature,
		Kind:     EventStop,
		Minute:   minute,
		PairedID: start.ID,
	}
	// The append can reallocate the backing array, so the pairing is
	// written through the index, not a pre-append pointer.
	timeline.Events = append(timeline.Events, stop)
	timeline.Events[startIndex].PairedID = stop.ID
	return stop, nil
}

// RemoveEvent deletes an event. Removing a start also removes its paired stop,
// which would otherwise be an orphan; removing a stop leaves its start
// unpaired, meaning the feature runs to session end.
func (timeline *Timeline) RemoveEvent(eventID string) bool {
	event := timeline.find(eventID)
	if event == nil {
		return false
	}

	switch event.Kind {
	case EventStart:
		if event.PairedID != "" {
			timeline.delete(event.PairedID)
		}
		timeline.delete(eventID)
	case EventStop:
		if start := timeline.find(event.PairedID); start != nil {
			start.PairedID = ""
		}
		timeline.delete(eventID)
	}
	return true
}

// PairedStop returns the stop event closing the given start, if any.
func (timeline *Timeline) PairedStop(startID string) (Event, bool) {
	start := timeline.find(startID)
	if start == nil || start.Kind != EventStart || start.PairedID == "" {
		return Event{}, false
	}
	stop := timeline.find(start.PairedID)
	if stop == nil {
		return Event{}, false
	}
	return *stop, true
}

// SetDuration changes the timeline length. Events past the new duration are
// clamped down to it, never deleted.
func (timeline *Timeline) SetDuration(durationMinutes int) {
	if durationMinutes < 1 {
		durationMinutes = 1
	}
	timeline.DurationMinutes = durationMinutes
	for i := range timeline.Events {
		if timeline.Events[i].Minute > durationMinutes {
			timeline.Events[i].Minute = durationMinutes
		}
	}
}

// SortedEvents returns a copy of the events ordered by minute, with stops
// before starts at the same minute so a coinciding stop/start pair does not
// flicker a feature off after its replacement started.
func (timeline *Timeline) SortedEvents() []Event {
	events := append([]Event(nil), timeline.Events...)
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Minute != events[j].Minute {
			return events[i].Minute < events[j].Minute
		}
		return events[i].Kind == EventStop && events[j].Kind == EventStart
	})
	return events
}

// Clone returns a deep copy, so a running session is isolated from edits.
func (timeline *Timeline) Clone() *Timeline {
	clone := *timeline
	clone.Events = append([]Event(nil), timeline.Events...)
	clone.PhrasePools = make(map[string][]string, len(timeline.PhrasePools))
	for name, phrases := range timeline.PhrasePools {
		clone.PhrasePools[name] = append([]string(nil), phrases...)
	}
	return &clone
}

// Normalize repairs a timeline from an untrusted source: minutes are clamped
// into range, stops at or before their start are pushed past it, and stops
// whose start no longer exists are dropped.
func (timeline *Timeline) Normalize() {
	if timeline.DurationMinutes < 1 {
		timeline.DurationMinutes = 1
	}
	if timeline.ID == "" {
		timeline.ID = uuid.NewString()
	}
	if timeline.PhrasePools == nil {
		timeline.PhrasePools = map[string][]string{}
	}

	for i := range timeline.Events {
		timeline.Events[i].Minute = timeline.clampMinute(timeline.Events[i].Minute)
		if timeline.Events[i].ID == "" {
			timeline.Events[i].ID = uuid.NewString()
		}
	}

	kept := timeline.Events[:0]
	for _, event := range timeline.Events {
		if event.Kind != EventStop {
			kept = append(kept, event)
			continue
		}
		start := timeline.find(event.PairedID)
		if start == nil || start.Kind != EventStart {
			continue
		}
		if event.Minute <= start.Minute {
			event.Minute = start.Minute + 1
			if event.Minute > timeline.DurationMinutes {
				event.Minute = timeline.DurationMinutes
			}
		}
		kept = append(kept, event)
	}
	timeline.Events = kept

	// Drop pairings that point at removed stops.
	ids := make(map[string]bool, len(timeline.Events))
	for _, event := range timeline.Events {
		ids[event.ID] = true
	}
	for i := range timeline.Events {
		if timeline.Events[i].PairedID != "" && !ids[timeline.Events[i].PairedID] {
			timeline.Events[i].PairedID = ""
		}
	}
}

// ActiveMinutes reports, per feature, how many session minutes the feature is
// switched on: paired spans count their length, an unpaired start runs to the
// end of the session.
func (timeline *Timeline) ActiveMinutes() map[FeatureID]int {
	active := map[FeatureID]int{}
	for _, event := range timeline.Events {
		if event.Kind != EventStart {
			continue
		}
		end := timeline.DurationMinutes
		if stop, ok := timeline.PairedStop(event.ID); ok {
			end = stop.Minute
		}
		if end > event.Minute {
			active[event.Feature] += end - event.Minute
		}
	}
	return active
}

func (timeline *Timeline) clampMinute(minute int) int {
	if minute < 0 {
		return 0
	}
	if minute > timeline.DurationMinutes {
		return timeline.DurationMinutes
	}
	return minute
}

func (timeline *Timeline) find(eventID string) *Event {
	if index := timeline.indexOf(eventID); index >= 0 {
		return &timeline.Events[index]
	}
	return nil
}

func (timeline *Timeline) indexOf(eventID string) int {
	if eventID == "" {
		return -1
	}
	for i := range timeline.Events {
		if timeline.Events[i].ID == eventID {
			return i
		}
	}
	return -1
}

func (timeline *Timeline) delete(eventID string) {
	for i := range timeline.Events {
		if timeline.Events[i].ID == eventID {
			timeline.Events = append(timeline.Events[:i], timeline.Events[i+1:]...)
			return
		}
	}
}
