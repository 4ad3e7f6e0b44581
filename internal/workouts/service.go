package workouts

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/liftmates/internal/sheets"
	"github.com/2beens/liftmates/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	sheetWorkouts         = "workouts"
	sheetWorkoutExercises = "workout_exercises"
	sheetWorkoutSessions  = "workout_sessions"
	sheetExerciseSets     = "exercise_sets"

	planCacheSizeBytes  = 1024 * 1024
	planCacheTTLSeconds = 5 * 60
)

type spreadsheet interface {
	Rows(ctx context.Context, sheet string, filters map[string]string) ([]sheets.Row, error)
	Append(ctx context.Context, sheet string, row sheets.Row) (sheets.Row, error)
}

type Service struct {
	sheetsClient spreadsheet
	cache        *freecache.Cache
	nowFunc      func() time.Time
}

func NewService(sheetsClient spreadsheet) *Service {
	return &Service{
		sheetsClient: sheetsClient,
		cache:        freecache.NewCache(planCacheSizeBytes),
		nowFunc:      time.Now,
	}
}

// TodayPlan returns the workout planned for the user today. A plan
// from the spreadsheet wins; when the sheet has nothing for today, or
// is unreachable, the hardcoded default plan is used so that a gym
// visit is never blocked.
func (s *Service) TodayPlan(ctx context.Context, userID string) (*Plan, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.todayPlan")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	today := s.nowFunc().Format("2006-01-02")
	cacheKey := []byte(fmt.Sprintf("plan||%s||%s", userID, today))

	if cached, err := s.cache.Get(cacheKey); err == nil {
		var plan Plan
		if err := json.Unmarshal(cached, &plan); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &plan, nil
		}
	}

	plan, err := s.planFromSheet(ctx, userID, today)
	if err != nil {
		log.Warnf("get plan for [%s] from sheet failed, using default: %s", userID, err)
		plan = DefaultPlan(userID, today)
	}
	if plan == nil {
		plan = DefaultPlan(userID, today)
	}

	if planJson, err := json.Marshal(plan); err == nil {
		if err := s.cache.Set(cacheKey, planJson, planCacheTTLSeconds); err != nil {
			log.Warnf("cache plan for [%s]: %s", userID, err)
		}
	}

	return plan, nil
}

// planFromSheet returns nil plan and nil error when the sheet simply
// has no workout scheduled for that day.
func (s *Service) planFromSheet(ctx context.Context, userID, date string) (*Plan, error) {
	workoutRows, err := s.sheetsClient.Rows(ctx, sheetWorkouts, map[string]string{
		"user_id":        userID,
		"scheduled_date": date,
	})
	if err != nil {
		return nil, fmt.Errorf("get workouts: %w", err)
	}
	if len(workoutRows) == 0 {
		return nil, nil
	}

	workoutRow := workoutRows[0]
	workoutID := workoutRow["workout_id"]

	exerciseRows, err := s.sheetsClient.Rows(ctx, sheetWorkoutExercises, map[string]string{
		"workout_id": workoutID,
	})
	if err != nil {
		return nil, fmt.Errorf("get workout exercises: %w", err)
	}

	sort.Slice(exerciseRows, func(i, j int) bool {
		return atoiOrZero(exerciseRows[i]["order_index"]) < atoiOrZero(exerciseRows[j]["order_index"])
	})

	exercises := make([]Exercise, 0, len(exerciseRows))
	for _, row := range exerciseRows {
		exercises = append(exercises, Exercise{
			ID:       row["exercise_id"],
			Name:     row["name"],
			Category: row["category"],
			Sets:     atoiOrZero(row["sets"]),
			Reps:     row["reps"],
			Weight:   row["weight"],
			RestTime: row["rest_time"],
			Notes:    row["notes"],
		})
	}

	return &Plan{
		ID:            workoutID,
		UserID:        userID,
		Title:         workoutRow["title"],
		Description:   workoutRow["description"],
		ScheduledDate: date,
		Duration:      workoutRow["estimated_duration"],
		TargetMuscles: splitMuscles(workoutRow["primary_muscle_groups"]),
		Exercises:     exercises,
	}, nil
}

// LogSession appends a finished workout session to the history sheet.
func (s *Service) LogSession(ctx context.Context, summary SessionSummary) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.logSession")
	defer span.End()
	span.SetAttributes(attribute.String("user", summary.UserID))

	_, err := s.sheetsClient.Append(ctx, sheetWorkoutSessions, sheets.Row{
		"user_id":               summary.UserID,
		"workout_date":          summary.WorkoutDate,
		"duration":              summary.Duration,
		"duration_seconds":      strconv.Itoa(summary.DurationSeconds),
		"completion_percentage": strconv.Itoa(summary.CompletionPercentage),
		"exercises_completed":   strconv.Itoa(summary.CompletedSets),
		"total_exercises":       strconv.Itoa(summary.TotalSets),
	})
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("append workout session: %w", err)
	}
	return nil
}

// LogSet appends one finished exercise set to the sets sheet.
func (s *Service) LogSet(ctx context.Context, set SetLog) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.logSet")
	defer span.End()

	_, err := s.sheetsClient.Append(ctx, sheetExerciseSets, sheets.Row{
		"user_id":          set.UserID,
		"exercise_id":      set.ExerciseID,
		"exercise_name":    set.ExerciseName,
		"workout_date":     set.WorkoutDate,
		"set_number":       strconv.Itoa(set.SetNumber),
		"duration_seconds": strconv.Itoa(set.DurationSeconds),
	})
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("append exercise set: %w", err)
	}
	return nil
}

// History returns past workout sessions of a user, most recent first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]SessionSummary, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.history")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	rows, err := s.sheetsClient.Rows(ctx, sheetWorkoutSessions, map[string]string{
		"user_id": userID,
	})
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, fmt.Errorf("get workout sessions: %w", err)
	}

	sessions := make([]SessionSummary, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, SessionSummary{
			UserID:               row["user_id"],
			WorkoutDate:          row["workout_date"],
			Duration:             row["duration"],
			DurationSeconds:      atoiOrZero(row["duration_seconds"]),
			CompletionPercentage: atoiOrZero(row["completion_percentage"]),
			CompletedSets:        atoiOrZero(row["exercises_completed"]),
			TotalSets:            atoiOrZero(row["total_exercises"]),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].WorkoutDate > sessions[j].WorkoutDate
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func splitMuscles(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	muscles := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			muscles = append(muscles, trimmed)
		}
	}
	return muscles
}
