package sim

import (
	"encoding/json"
	"time"

	"github.com/napolitain/citysim/internal/models"
)

// EventKind represents the type of city event
type EventKind int

const (
	EventTileChanged EventKind = iota
	EventStageActivated
	EventPromptRaised
	EventPromptResolved
	EventNotice
	EventRevenueCredited
	EventBuildingBurned
)

// String returns a string representation of the event kind
func (k EventKind) String() string {
	switch k {
	case EventTileChanged:
		return "TileChanged"
	case EventStageActivated:
		return "StageActivated"
	case EventPromptRaised:
		return "PromptRaised"
	case EventPromptResolved:
		return "PromptResolved"
	case EventNotice:
		return "Notice"
	case EventRevenueCredited:
		return "RevenueCredited"
	case EventBuildingBurned:
		return "BuildingBurned"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the kind by name
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is published to observers at every externally visible mutation
type Event struct {
	Kind     EventKind           `json:"kind"`
	Clock    time.Duration       `json:"clock"`
	Coord    models.Coord        `json:"coord"`
	Occupied bool                `json:"occupied,omitempty"`
	Building models.BuildingType `json:"building,omitempty"`
	Stage    Stage               `json:"-"`
	Prompt   *Prompt             `json:"prompt,omitempty"`
	Accepted bool                `json:"accepted,omitempty"`
	Amount   float64             `json:"amount,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// MarshalJSON names the stage only on StageActivated events
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	out := struct {
		alias
		Stage string `json:"stage,omitempty"`
	}{alias: alias(e)}
	if e.Kind == EventStageActivated {
		out.Stage = e.Stage.String()
	}
	return json.Marshal(out)
}

// Observer receives city events synchronously, inside the mutating call
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(e Event)

// Observe calls f(e)
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// Recorder is an Observer that keeps every event, for tests and reports
type Recorder struct {
	Events []Event
}

// Observe appends the event
func (r *Recorder) Observe(e Event) {
	r.Events = append(r.Events, e)
}

// OfKind returns the recorded events of one kind
func (r *Recorder) OfKind(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
