package events

import (
	"fmt"
	"time"
)

// Event is a geofence transition as carried on the events pub/sub channel.
type Event struct {
	SessionID  string    `json:"session_id"`
	Action     Action    `json:"action"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Distance   float64   `json:"distance,omitempty"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e *Event) Validate() error {
	if e.SessionID == "" {
		return fmt.Errorf("missing session_id")
	}
	if !e.Action.IsValid() {
		return fmt.Errorf("invalid action %q", e.Action)
	}
	return nil
}

type Action string

const (
	ActionEnter Action = "enter"
	ActionExit  Action = "exit"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionEnter, ActionExit:
		return true
	}
	return false
}
