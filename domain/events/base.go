package events

import (
	"time"
)

// DomainEvent is something that has already happened to a plot request.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypePlotRendered = "plot.rendered"
	TypePlotRejected = "plot.rejected"
)

// PlotRendered is raised after the image was stored and the reply sent.
type PlotRendered struct {
	BaseEvent
	RequestID  string  `json:"request_id"`
	EventID    string  `json:"event_id,omitempty"`
	Source     string  `json:"source"`
	Function   string  `json:"function"`
	RangeMin   float64 `json:"range_min"`
	RangeMax   float64 `json:"range_max"`
	Samples    int     `json:"samples"`
	ObjectKey  string  `json:"object_key"`
	ImageBytes int     `json:"image_bytes"`
}

// NewPlotRendered creates a PlotRendered event
func NewPlotRendered(requestID, eventID, source, function string, rangeMin, rangeMax float64, samples int, objectKey string, imageBytes int, timestamp time.Time) PlotRendered {
	return PlotRendered{
		BaseEvent: BaseEvent{
			AggregateID: requestID,
			EventType:   TypePlotRendered,
			Timestamp:   timestamp,
			Version:     1,
		},
		RequestID:  requestID,
		EventID:    eventID,
		Source:     source,
		Function:   function,
		RangeMin:   rangeMin,
		RangeMax:   rangeMax,
		Samples:    samples,
		ObjectKey:  objectKey,
		ImageBytes: imageBytes,
	}
}

// PlotRejected is raised when a command could not be plotted. It carries the
// failure kind, never the user's message text.
type PlotRejected struct {
	BaseEvent
	EventID string `json:"event_id,omitempty"`
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Stage   string `json:"stage,omitempty"`
}

// NewPlotRejected creates a PlotRejected event. Rejected requests have no
// request ID, so the webhook event ID is the aggregate.
func NewPlotRejected(eventID, source, kind, stage string, timestamp time.Time) PlotRejected {
	return PlotRejected{
		BaseEvent: BaseEvent{
			AggregateID: eventID,
			EventType:   TypePlotRejected,
			Timestamp:   timestamp,
			Version:     1,
		},
		EventID: eventID,
		Source:  source,
		Kind:    kind,
		Stage:   stage,
	}
}
