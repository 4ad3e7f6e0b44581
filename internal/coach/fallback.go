package coach

import "time"

// FallbackRoutine is the deterministic weekly plan used when the coach
// endpoint is unreachable and no cached routine exists. Muscle building
// gets heavier sets with longer rest, weight loss gets higher reps.
func FallbackRoutine(user UserData, now time.Time) *WeeklyRoutine {
	muscleBuilding := user.Goal == "muscle_building"

	baseSets := 3
	baseReps := "12-18"
	restTime := "60s"
	focus := "Weight loss with metabolic training"
	calories := 300
	if muscleBuilding {
		baseSets = 4
		baseReps = "8-12"
		restTime = "90s"
		focus = "Muscle building with progressive overload"
		calories = 200
	}

	sundayTitle := "Active Recovery"
	sundayExercises := []RoutineExercise{
		{Name: "Light Walk", Sets: 1, Reps: "20-30 min", Rest: "-"},
		{Name: "Gentle Yoga", Sets: 1, Reps: "15 min", Rest: "-"},
	}
	if muscleBuilding {
		sundayTitle = "Rest Day"
		sundayExercises = nil
	}

	return &WeeklyRoutine{
		WeeklyPlan: map[string]DayRoutine{
			"Monday": {
				Title: "Glutes & Shoulders",
				Exercises: []RoutineExercise{
					{Name: "Hip Thrusts", Sets: baseSets, Reps: baseReps, Rest: restTime},
					{Name: "Bulgarian Split Squats", Sets: 3, Reps: baseReps, Rest: "75s"},
					{Name: "Lateral Raises", Sets: 3, Reps: "12-15", Rest: "45s"},
					{Name: "Overhead Press", Sets: 3, Reps: baseReps, Rest: restTime},
				},
			},
			"Tuesday": {
				Title: "Back & Chest",
				Exercises: []RoutineExercise{
					{Name: "Lat Pulldown", Sets: baseSets, Reps: baseReps, Rest: restTime},
					{Name: "Chest Press", Sets: baseSets, Reps: baseReps, Rest: restTime},
					{Name: "Seated Rows", Sets: 3, Reps: baseReps, Rest: "75s"},
					{Name: "Incline Press", Sets: 3, Reps: baseReps, Rest: "75s"},
				},
			},
			"Wednesday": {
				Title: "Hips & Arms",
				Exercises: []RoutineExercise{
					{Name: "Romanian Deadlifts", Sets: baseSets, Reps: baseReps, Rest: restTime},
					{Name: "Hip Abduction", Sets: 3, Reps: "15-20", Rest: "60s"},
					{Name: "Bicep Curls", Sets: 3, Reps: baseReps, Rest: "60s"},
					{Name: "Tricep Extensions", Sets: 3, Reps: baseReps, Rest: "60s"},
				},
			},
			"Thursday": {
				Title: "Chest & Back",
				Exercises: []RoutineExercise{
					{Name: "Bench Press", Sets: baseSets, Reps: baseReps, Rest: restTime},
					{Name: "Pull-ups/Assisted", Sets: 3, Reps: baseReps, Rest: restTime},
					{Name: "Dumbbell Flyes", Sets: 3, Reps: "10-15", Rest: "75s"},
					{Name: "Cable Rows", Sets: 3, Reps: baseReps, Rest: "75s"},
				},
			},
			"Friday": {
				Title: "Full Body",
				Exercises: []RoutineExercise{
					{Name: "Squats", Sets: baseSets, Reps: baseReps, Rest: restTime},
					{Name: "Deadlifts", Sets: 3, Reps: baseReps, Rest: restTime},
					{Name: "Push-ups", Sets: 3, Reps: "To failure", Rest: "75s"},
					{Name: "Bent-over Rows", Sets: 3, Reps: baseReps, Rest: "75s"},
				},
			},
			"Saturday": {
				Title: "Core & Cardio",
				Exercises: []RoutineExercise{
					{Name: "Plank Variations", Sets: 3, Reps: "30-45s", Rest: "60s"},
					{Name: "Russian Twists", Sets: 3, Reps: "15-20", Rest: "45s"},
					{Name: "Leg Raises", Sets: 3, Reps: "10-15", Rest: "45s"},
					{Name: "Cardio Circuit", Sets: 1, Reps: "15-20 min", Rest: "-"},
				},
			},
			"Sunday": {
				Title:     sundayTitle,
				Exercises: sundayExercises,
			},
		},
		WeeklyFocus:       focus,
		ProgressionNotes:  "Basic routine - will be enhanced when the coach is available",
		EstimatedCalories: calories,
		GeneratedAt:       now.UTC().Format(time.RFC3339),
		Model:             "fallback",
	}
}

// FallbackFeedback rates a session from its completion percentage alone.
func FallbackFeedback(session SessionData, now time.Time) *Feedback {
	completion := session.CompletionPercentage

	rating := "needs_improvement"
	switch {
	case completion >= 90:
		rating = "excellent"
	case completion >= 70:
		rating = "good"
	case completion >= 50:
		rating = "average"
	}

	achievements := []string{"Showed up and tried"}
	var improvements []string
	if completion >= 70 {
		achievements = []string{"Completed most exercises", "Maintained good form"}
	} else {
		improvements = []string{"Consider reducing weight or reps", "Focus on completing more sets"}
	}

	message := "Every workout counts. Keep building momentum!"
	if completion >= 80 {
		message = "Amazing workout! You're getting stronger every day!"
	}

	return &Feedback{
		SessionRating:       rating,
		Achievements:        achievements,
		Improvements:        improvements,
		RecoveryTips:        []string{"Stay hydrated", "Get adequate sleep", "Light stretching tomorrow"},
		MotivationalMessage: message,
		ProvidedAt:          now.UTC().Format(time.RFC3339),
	}
}
