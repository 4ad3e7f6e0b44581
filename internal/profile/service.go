package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/liftmates/internal/sheets"
	"github.com/2beens/liftmates/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	sheetUsers        = "users"
	sheetWeeklyStatus = "weekly_status"
)

var ErrUserNotFound = errors.New("user not found")

type spreadsheet interface {
	Rows(ctx context.Context, sheet string, filters map[string]string) ([]sheets.Row, error)
	Append(ctx context.Context, sheet string, row sheets.Row) (sheets.Row, error)
	Update(ctx context.Context, sheet string, filters map[string]string, row sheets.Row) (sheets.Row, error)
}

type Service struct {
	sheetsClient spreadsheet
	nowFunc      func() time.Time
}

func NewService(sheetsClient spreadsheet) *Service {
	return &Service{
		sheetsClient: sheetsClient,
		nowFunc:      time.Now,
	}
}

// Users returns the two profiles, falling back to the hardcoded ones
// when the sheet cannot be reached.
func (s *Service) Users(ctx context.Context) ([]Profile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.users")
	defer span.End()

	rows, err := s.sheetsClient.Rows(ctx, sheetUsers, nil)
	if err != nil {
		log.Warnf("get users from sheet failed, using defaults: %s", err)
		return DefaultProfiles(), nil
	}

	var profiles []Profile
	for _, row := range rows {
		userID := strings.ToLower(row["user_id"])
		if userID != "a" && userID != "b" {
			continue
		}
		profiles = append(profiles, Profile{
			UserID:          userID,
			Name:            row["name"],
			Age:             row["age"],
			Goal:            row["goal"],
			CurrentWeightKg: row["current_weight_kg"],
		})
	}
	if len(profiles) == 0 {
		return DefaultProfiles(), nil
	}
	return profiles, nil
}

func (s *Service) User(ctx context.Context, userID string) (*Profile, error) {
	profiles, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].UserID == userID {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
}

// UpdateUser writes the given profile columns back to the sheet.
func (s *Service) UpdateUser(ctx context.Context, userID string, updates map[string]string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.updateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	row := make(sheets.Row, len(updates)+1)
	for col, val := range updates {
		row[col] = val
	}
	row["last_updated"] = s.nowFunc().Format("2006-01-02")

	if _, err := s.sheetsClient.Update(ctx, sheetUsers, map[string]string{"user_id": userID}, row); err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("update user %s: %w", userID, err)
	}
	return nil
}

// WeeklyStatus returns the user's status row for the current week,
// or the default week when there is none yet or the sheet is down.
func (s *Service) WeeklyStatus(ctx context.Context, userID string) (WeeklyStatus, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.weeklyStatus")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	weekStart := sheets.WeekStartDate(s.nowFunc())
	rows, err := s.sheetsClient.Rows(ctx, sheetWeeklyStatus, map[string]string{
		"user_id":         userID,
		"week_start_date": weekStart,
	})
	if err != nil {
		log.Warnf("get weekly status for [%s] failed, using default: %s", userID, err)
		return DefaultWeeklyStatus(), nil
	}
	if len(rows) == 0 {
		return DefaultWeeklyStatus(), nil
	}

	row := rows[0]
	status := make(WeeklyStatus, len(weekdays))
	for _, day := range weekdays {
		dayStatus := DayStatus(row[strings.ToLower(day)])
		if !dayStatus.IsValid() {
			dayStatus = DayPlanned
		}
		status[day] = dayStatus
	}
	return status, nil
}

// SetDayStatus updates one weekday of the current week. The week row
// is updated in place, or created when this is the week's first
// status change.
func (s *Service) SetDayStatus(ctx context.Context, userID, day string, status DayStatus) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.setDayStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("user", userID),
		attribute.String("day", day),
		attribute.String("status", string(status)),
	)

	if !validWeekday(day) {
		return fmt.Errorf("invalid weekday: %s", day)
	}
	if !status.IsValid() {
		return fmt.Errorf("invalid day status: %s", status)
	}

	weekStart := sheets.WeekStartDate(s.nowFunc())
	filters := map[string]string{
		"user_id":         userID,
		"week_start_date": weekStart,
	}

	_, err := s.sheetsClient.Update(ctx, sheetWeeklyStatus, filters, sheets.Row{
		strings.ToLower(day): string(status),
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, sheets.ErrRowNotFound) {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("update weekly status: %w", err)
	}

	// first change this week, create the row
	newWeek := DefaultWeeklyStatus()
	newWeek[day] = status
	row := sheets.Row{
		"user_id":         userID,
		"week_start_date": weekStart,
	}
	for weekday, dayStatus := range newWeek {
		row[strings.ToLower(weekday)] = string(dayStatus)
	}
	if _, err := s.sheetsClient.Append(ctx, sheetWeeklyStatus, row); err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("append weekly status: %w", err)
	}
	return nil
}

// Reschedule moves a planned workout from one weekday to another:
// the source day is cancelled and the target day reopened, unless a
// workout was already completed there.
func (s *Service) Reschedule(ctx context.Context, userID, fromDay, toDay string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.reschedule")
	defer span.End()
	span.SetAttributes(
		attribute.String("user", userID),
		attribute.String("fromDay", fromDay),
		attribute.String("toDay", toDay),
	)

	if !validWeekday(fromDay) {
		return fmt.Errorf("invalid weekday: %s", fromDay)
	}
	if !validWeekday(toDay) {
		return fmt.Errorf("invalid weekday: %s", toDay)
	}

	if err := s.SetDayStatus(ctx, userID, fromDay, DayCancelled); err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("cancel %s: %w", fromDay, err)
	}

	week, err := s.WeeklyStatus(ctx, userID)
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("get weekly status: %w", err)
	}
	if week[toDay] == DayCompleted {
		return nil
	}

	toStatus := DayPlanned
	if s.nowFunc().Weekday().String() == toDay {
		toStatus = DayToday
	}
	if err := s.SetDayStatus(ctx, userID, toDay, toStatus); err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("reopen %s: %w", toDay, err)
	}
	return nil
}

func validWeekday(day string) bool {
	for _, weekday := range weekdays {
		if weekday == day {
			return true
		}
	}
	return false
}
