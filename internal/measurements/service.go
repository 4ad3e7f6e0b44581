package measurements

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/2beens/liftmates/internal/sheets"
	"github.com/2beens/liftmates/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const (
	sheetBodyMeasurements = "body_measurements"
	progressHistorySize   = 4
)

type spreadsheet interface {
	Rows(ctx context.Context, sheet string, filters map[string]string) ([]sheets.Row, error)
	Append(ctx context.Context, sheet string, row sheets.Row) (sheets.Row, error)
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

// Add stores a new check-in. An empty date means today.
func (s *Service) Add(ctx context.Context, m Measurement) (Measurement, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "measurements.add")
	defer span.End()
	span.SetAttributes(attribute.String("user", m.UserID))

	if m.MeasurementDate == "" {
		m.MeasurementDate = todayDate(s.nowFunc())
	}

	_, err := s.sheetsClient.Append(ctx, sheetBodyMeasurements, sheets.Row{
		"user_id":             m.UserID,
		"measurement_date":    m.MeasurementDate,
		"weight_kg":           formatFloat(m.WeightKg),
		"muscle_mass_kg":      formatFloat(m.MuscleMassKg),
		"body_fat_percentage": formatFloat(m.BodyFatPercentage),
		"visceral_fat_level":  strconv.Itoa(m.VisceralFatLevel),
	})
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return Measurement{}, fmt.Errorf("append body measurement: %w", err)
	}
	return m, nil
}

// List returns the user's check-ins, most recent first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Measurement, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "measurements.list")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	rows, err := s.sheetsClient.Rows(ctx, sheetBodyMeasurements, map[string]string{
		"user_id": userID,
	})
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, fmt.Errorf("get body measurements: %w", err)
	}

	measurements := make([]Measurement, 0, len(rows))
	for _, row := range rows {
		if row["measurement_date"] == "" {
			continue
		}
		measurements = append(measurements, Measurement{
			UserID:            row["user_id"],
			MeasurementDate:   row["measurement_date"],
			WeightKg:          parseFloat(row["weight_kg"]),
			MuscleMassKg:      parseFloat(row["muscle_mass_kg"]),
			BodyFatPercentage: parseFloat(row["body_fat_percentage"]),
			VisceralFatLevel:  int(parseFloat(row["visceral_fat_level"])),
		})
	}

	sort.Slice(measurements, func(i, j int) bool {
		return measurements[i].MeasurementDate > measurements[j].MeasurementDate
	})

	if limit > 0 && len(measurements) > limit {
		measurements = measurements[:limit]
	}
	return measurements, nil
}

// UserProgress builds the chart metrics from the last few check-ins.
func (s *Service) UserProgress(ctx context.Context, userID string) (*Progress, error) {
	measurements, err := s.List(ctx, userID, progressHistorySize)
	if err != nil {
		return nil, err
	}
	if len(measurements) == 0 {
		return nil, nil
	}

	latest := measurements[0]
	var previous *Measurement
	if len(measurements) > 1 {
		previous = &measurements[1]
	}

	// history runs oldest first for the chart
	history := func(value func(Measurement) float64) []float64 {
		values := make([]float64, 0, len(measurements))
		for i := len(measurements) - 1; i >= 0; i-- {
			values = append(values, value(measurements[i]))
		}
		return values
	}

	weight := func(m Measurement) float64 { return m.WeightKg }
	muscle := func(m Measurement) float64 { return m.MuscleMassKg }
	bodyFat := func(m Measurement) float64 { return m.BodyFatPercentage }
	visceral := func(m Measurement) float64 { return float64(m.VisceralFatLevel) }

	prev := func(value func(Measurement) float64) (float64, bool) {
		if previous == nil {
			return 0, false
		}
		return value(*previous), true
	}

	buildMetric := func(value func(Measurement) float64, unit string) Metric {
		current := value(latest)
		prevValue, hasPrev := prev(value)
		return Metric{
			Current: formatFloat(current) + unit,
			Change:  formatChange(current, prevValue, hasPrev, unit),
			Trend:   trend(current, prevValue, hasPrev),
			History: history(value),
		}
	}

	return &Progress{
		Weight:   buildMetric(weight, "kg"),
		Muscle:   buildMetric(muscle, "kg"),
		BodyFat:  buildMetric(bodyFat, "%"),
		Visceral: buildMetric(visceral, ""),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatChange(current, previous float64, hasPrevious bool, unit string) string {
	if !hasPrevious {
		return "0" + unit
	}
	change := current - previous
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%s", sign, change, unit)
}

func trend(current, previous float64, hasPrevious bool) string {
	switch {
	case !hasPrevious || current == previous:
		return "stable"
	case current > previous:
		return "up"
	default:
		return "down"
	}
}
