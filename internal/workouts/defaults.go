package workouts

// DefaultPlan is the fallback workout used when the spreadsheet has no
// plan for the user and day, or cannot be reached at all. Training
// should never be blocked by a flaky sheet.
func DefaultPlan(userID, scheduledDate string) *Plan {
	switch userID {
	case "b":
		return &Plan{
			ID:            "workout-b-001",
			UserID:        userID,
			Title:         "Glutes & Shoulders + Cardio",
			Description:   "Strength training with cardio finish for weight loss",
			ScheduledDate: scheduledDate,
			Duration:      "70 min",
			TargetMuscles: []string{"Glutes", "Shoulders", "Cardio"},
			Exercises: []Exercise{
				{
					ID: "ex-1", Name: "Goblet Squats", Category: "Glutes",
					Sets: 4, Reps: "15-20", Weight: "12kg dumbbell", RestTime: "60s",
					Notes: "Full depth, chest up",
				},
				{
					ID: "ex-2", Name: "Romanian Deadlifts", Category: "Glutes",
					Sets: 3, Reps: "12-15", Weight: "15kg barbell", RestTime: "60s",
					Notes: "Feel the stretch in hamstrings",
				},
				{
					ID: "ex-3", Name: "Glute Bridges", Category: "Glutes",
					Sets: 3, Reps: "20", Weight: "Bodyweight", RestTime: "45s",
					Notes: "Squeeze at the top for 2 seconds",
				},
				{
					ID: "ex-4", Name: "Dumbbell Shoulder Press", Category: "Shoulders",
					Sets: 3, Reps: "12-15", Weight: "7kg dumbbells", RestTime: "60s",
					Notes: "Controlled movement, full range",
				},
				{
					ID: "ex-5", Name: "Cardio Circuit", Category: "Cardio",
					Sets: 1, Reps: "15 min", Weight: "Bodyweight", RestTime: "30s between exercises",
					Notes: "Treadmill intervals: 2min walk, 1min jog",
				},
			},
		}
	default:
		return &Plan{
			ID:            "workout-a-001",
			UserID:        userID,
			Title:         "Glutes & Shoulders",
			Description:   "Focus on lower body strength and shoulder development",
			ScheduledDate: scheduledDate,
			Duration:      "60 min",
			TargetMuscles: []string{"Glutes", "Shoulders", "Hip Abductors"},
			Exercises: []Exercise{
				{
					ID: "ex-1", Name: "Barbell Hip Thrust", Category: "Glutes",
					Sets: 4, Reps: "8-12", Weight: "Progressive", RestTime: "90s",
					Notes: "Focus on hip extension, pause at top",
				},
				{
					ID: "ex-2", Name: "Bulgarian Split Squats", Category: "Glutes",
					Sets: 3, Reps: "12 each leg", Weight: "15kg dumbbells", RestTime: "60s",
					Notes: "Control the descent, drive through front heel",
				},
				{
					ID: "ex-3", Name: "Hip Abduction Machine", Category: "Glutes",
					Sets: 3, Reps: "15-20", Weight: "Stack 6-8", RestTime: "45s",
					Notes: "Squeeze glutes, controlled movement",
				},
				{
					ID: "ex-4", Name: "Overhead Press", Category: "Shoulders",
					Sets: 4, Reps: "8-10", Weight: "12kg barbell", RestTime: "90s",
					Notes: "Keep core tight, press straight up",
				},
				{
					ID: "ex-5", Name: "Lateral Raises", Category: "Shoulders",
					Sets: 3, Reps: "12-15", Weight: "5kg dumbbells", RestTime: "45s",
					Notes: "Control on the way down, slight bend in elbows",
				},
			},
		}
	}
}
