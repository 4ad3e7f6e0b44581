package profile

import "time"

// DayStatus is the plan status of one weekday.
type DayStatus string

const (
	DayPlanned   DayStatus = "planned"
	DayToday     DayStatus = "today"
	DayCompleted DayStatus = "completed"
	DayCancelled DayStatus = "cancelled"
	DayRest      DayStatus = "rest"
)

func (s DayStatus) IsValid() bool {
	switch s {
	case DayPlanned, DayToday, DayCompleted, DayCancelled, DayRest:
		return true
	default:
		return false
	}
}

// WeeklyStatus maps weekday names (Monday..Sunday) to their status.
type WeeklyStatus map[string]DayStatus

// Profile is the spreadsheet-backed profile of one user.
type Profile struct {
	UserID          string `json:"userId"`
	Name            string `json:"name"`
	Age             string `json:"age"`
	Goal            string `json:"goal"`
	CurrentWeightKg string `json:"currentWeightKg"`
}

// UserState is the locally mirrored training state of one user,
// updated from engine lifecycle events.
type UserState struct {
	UserID          string     `json:"userId"`
	WorkoutActive   bool       `json:"workoutActive"`
	LastWorkoutDate *time.Time `json:"lastWorkoutDate,omitempty"`
	LastDuration    string     `json:"lastDuration,omitempty"`
	LastProgress    int        `json:"lastProgress"`
	// Streak counts workouts finished in a row, a cancel breaks it.
	Streak int `json:"streak"`
}

var weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func DefaultWeeklyStatus() WeeklyStatus {
	return WeeklyStatus{
		"Monday":    DayPlanned,
		"Tuesday":   DayToday,
		"Wednesday": DayPlanned,
		"Thursday":  DayPlanned,
		"Friday":    DayPlanned,
		"Saturday":  DayPlanned,
		"Sunday":    DayRest,
	}
}

func DefaultProfiles() []Profile {
	return []Profile{
		{UserID: "a", Name: "User A", Age: "28", Goal: "muscle_building", CurrentWeightKg: "48"},
		{UserID: "b", Name: "User B", Age: "27", Goal: "weight_loss", CurrentWeightKg: "67"},
	}
}
