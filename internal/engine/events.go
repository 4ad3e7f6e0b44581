package engine

import (
	"context"
	"time"

	"github.com/2beens/liftmates/internal/workouts"
)

type EventType string

const (
	EventWorkoutStarted   EventType = "workout_started"
	EventWorkoutCompleted EventType = "workout_completed"
	EventWorkoutCancelled EventType = "workout_cancelled"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventWorkoutStarted, EventWorkoutCompleted, EventWorkoutCancelled:
		return true
	default:
		return false
	}
}

// Event is emitted by the engine on every session lifecycle change.
type Event struct {
	Type      EventType      `json:"type"`
	UserID    string         `json:"userId"`
	Timestamp time.Time      `json:"timestamp"`
	Plan      *workouts.Plan `json:"plan,omitempty"`    // set on start
	Summary   *Summary       `json:"summary,omitempty"` // set on complete
}

// Notifier receives lifecycle events. Implementations must not block
// the engine, slow work goes to their own goroutines.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}
