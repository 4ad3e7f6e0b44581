package coach

// UserData is the profile context sent along with every coach request.
type UserData struct {
	UserID          string  `json:"userId"`
	Name            string  `json:"name"`
	Age             int     `json:"age"`
	Goal            string  `json:"goal"` // muscle_building, weight_loss
	CurrentWeightKg float64 `json:"currentWeightKg"`
}

// HistoryEntry is one past workout, trimmed down for the routine prompt.
type HistoryEntry struct {
	Date                 string `json:"date"`
	Title                string `json:"title"`
	Duration             string `json:"duration"`
	CompletionPercentage int    `json:"completionPercentage"`
}

type RoutineExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	Rest string `json:"rest"`
}

type DayRoutine struct {
	Title     string            `json:"title"`
	Exercises []RoutineExercise `json:"exercises"`
}

// WeeklyRoutine maps weekday names (Monday ... Sunday) to day plans.
type WeeklyRoutine struct {
	WeeklyPlan        map[string]DayRoutine `json:"weeklyPlan"`
	WeeklyFocus       string                `json:"weeklyFocus"`
	ProgressionNotes  string                `json:"progressionNotes"`
	EstimatedCalories int                   `json:"estimatedCalories"`
	GeneratedAt       string                `json:"generatedAt"`
	Model             string                `json:"model"`
}

// SessionData describes a just-finished workout for the feedback request.
type SessionData struct {
	WorkoutTitle         string `json:"workoutTitle"`
	Duration             string `json:"duration"`
	CompletionPercentage int    `json:"completionPercentage"`
	UserNotes            string `json:"userNotes,omitempty"`
}

type Feedback struct {
	SessionRating       string   `json:"sessionRating"`
	Achievements        []string `json:"achievements"`
	Improvements        []string `json:"improvements"`
	RecoveryTips        []string `json:"recoveryTips"`
	MotivationalMessage string   `json:"motivationalMessage"`
	ProvidedAt          string   `json:"providedAt"`
}
