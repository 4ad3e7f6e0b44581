package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/2beens/liftmates/internal/workouts"
)

// Status is the shared lifecycle status of the whole gym floor, not of
// a single user. Two people can train at once, the status reflects the
// last lifecycle change.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// TimerMode says what the visible timer of a user is counting.
type TimerMode string

const (
	TimerModeSet   TimerMode = "SET"
	TimerModeRest  TimerMode = "REST"
	TimerModeReady TimerMode = "READY"
)

// SetTimer times the set currently being performed. While paused,
// Running is false and Duration holds the elapsed seconds so far.
type SetTimer struct {
	Running    bool   `json:"running"`
	StartedAt  int64  `json:"startedAt"` // unix milli
	Duration   int    `json:"duration"`  // seconds, only meaningful while paused
	ExerciseID string `json:"exerciseId"`
	SetIndex   int    `json:"setIndex"`
}

// RestTimer times the break after a finished set.
type RestTimer struct {
	Running   bool  `json:"running"`
	StartedAt int64 `json:"startedAt"`
	Duration  int   `json:"duration"`
}

// SessionState is the full workout session state of one user.
type SessionState struct {
	UserID           string          `json:"userId"`
	Plan             *workouts.Plan  `json:"plan"`
	StartedAt        time.Time       `json:"startedAt"`
	SetTimer         SetTimer        `json:"setTimer"`
	RestTimer        RestTimer       `json:"restTimer"`
	CheckedSets      map[string]bool `json:"checkedSets"`
	SetTimings       map[string]int  `json:"setTimings"`
	CompletedSets    int             `json:"completedSets"`
	TotalSets        int             `json:"totalSets"`
	TotalWorkoutTime int             `json:"totalWorkoutTime"` // seconds, sum of finished set durations
	UpdatedAt        int64           `json:"updatedAt"`        // unix milli of the last mutation
}

// Progress returns the completion percentage, rounded to the nearest
// whole number. A plan with zero sets is simply 0, never a division
// by zero.
func (s *SessionState) Progress() int {
	if s.TotalSets == 0 {
		return 0
	}
	return int(math.Round(float64(s.CompletedSets) / float64(s.TotalSets) * 100))
}

// Summary is what remains of a session once it is completed.
type Summary struct {
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Duration      string    `json:"duration"` // mm:ss
	TotalSeconds  int       `json:"totalSeconds"`
	Progress      int       `json:"progress"`
	CompletedSets int       `json:"completedSets"`
	TotalSets     int       `json:"totalSets"`
	CompletedAt   time.Time `json:"completedAt"`
}

// SetKey identifies one set of one exercise within a session.
func SetKey(exerciseID string, setIndex int) string {
	return fmt.Sprintf("%s-%d", exerciseID, setIndex)
}

// FormatSeconds renders seconds as mm:ss. Negative or zero values
// render as 00:00.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
