package workouts

import "time"

// Exercise is one exercise of a day's plan. Reps and Weight stay free
// text on purpose, the plans mix things like "12 each leg" and
// "Stack 6-8" with plain numbers.
type Exercise struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Sets     int    `json:"sets"`
	Reps     string `json:"reps"`
	Weight   string `json:"weight"`
	RestTime string `json:"restTime"`
	Notes    string `json:"notes,omitempty"`
}

// Plan is the workout planned for one user for one day.
type Plan struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ScheduledDate string     `json:"scheduledDate"`
	Duration      string     `json:"duration,omitempty"`
	TargetMuscles []string   `json:"targetMuscles,omitempty"`
	Exercises     []Exercise `json:"exercises"`
}

func (p *Plan) TotalSets() int {
	total := 0
	for _, ex := range p.Exercises {
		total += ex.Sets
	}
	return total
}

func (p *Plan) Exercise(id string) (Exercise, bool) {
	for _, ex := range p.Exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return Exercise{}, false
}

// SessionSummary is one finished workout session, as kept in the
// workout_sessions sheet.
type SessionSummary struct {
	UserID               string    `json:"userId"`
	WorkoutDate          string    `json:"workoutDate"`
	Duration             string    `json:"duration"`
	DurationSeconds      int       `json:"durationSeconds"`
	CompletionPercentage int       `json:"completionPercentage"`
	CompletedSets        int       `json:"completedSets"`
	TotalSets            int       `json:"totalSets"`
	CompletedAt          time.Time `json:"completedAt"`
}

// SetLog is one finished exercise set, as kept in the exercise_sets
// sheet.
type SetLog struct {
	UserID          string `json:"userId"`
	ExerciseID      string `json:"exerciseId"`
	ExerciseName    string `json:"exerciseName"`
	SetNumber       int    `json:"setNumber"`
	DurationSeconds int    `json:"durationSeconds"`
	WorkoutDate     string `json:"workoutDate"`
}
