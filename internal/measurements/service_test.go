package measurements

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/liftmates/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spreadsheetMock struct {
	rows     []sheets.Row
	appended []sheets.Row
}

func (m *spreadsheetMock) Rows(_ context.Context, sheet string, filters map[string]string) ([]sheets.Row, error) {
	var matched []sheets.Row
	for _, row := range m.rows {
		matches := true
		for col, val := range filters {
			if row[col] != val {
				matches = false
				break
			}
		}
		if matches {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (m *spreadsheetMock) Append(_ context.Context, sheet string, row sheets.Row) (sheets.Row, error) {
	m.appended = append(m.appended, row)
	return row, nil
}

func newTestService(mock *spreadsheetMock) *Service {
	service := NewService(mock)
	service.nowFunc = func() time.Time {
		return time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	}
	return service
}

func TestService_Add(t *testing.T) {
	mock := &spreadsheetMock{}
	service := newTestService(mock)

	added, err := service.Add(context.Background(), Measurement{
		UserID:            "b",
		WeightKg:          66.5,
		MuscleMassKg:      26.2,
		BodyFatPercentage: 27.1,
		VisceralFatLevel:  4,
	})
	require.NoError(t, err)

	// empty date defaults to today
	assert.Equal(t, "2024-03-13", added.MeasurementDate)
	require.Len(t, mock.appended, 1)
	assert.Equal(t, "66.5", mock.appended[0]["weight_kg"])
	assert.Equal(t, "4", mock.appended[0]["visceral_fat_level"])
}

func TestService_List(t *testing.T) {
	mock := &spreadsheetMock{
		rows: []sheets.Row{
			{"user_id": "a", "measurement_date": "2024-02-01", "weight_kg": "49.1"},
			{"user_id": "a", "measurement_date": "2024-03-01", "weight_kg": "48.5"},
			{"user_id": "a", "measurement_date": "", "weight_kg": "0"},
			{"user_id": "b", "measurement_date": "2024-03-02", "weight_kg": "66.5"},
		},
	}
	service := newTestService(mock)

	measurements, err := service.List(context.Background(), "a", 10)
	require.NoError(t, err)
	require.Len(t, measurements, 2)

	// most recent first, dateless rows dropped
	assert.Equal(t, "2024-03-01", measurements[0].MeasurementDate)
	assert.Equal(t, 48.5, measurements[0].WeightKg)
	assert.Equal(t, "2024-02-01", measurements[1].MeasurementDate)
}

func TestService_UserProgress(t *testing.T) {
	mock := &spreadsheetMock{
		rows: []sheets.Row{
			{
				"user_id": "a", "measurement_date": "2024-01-01",
				"weight_kg": "50", "muscle_mass_kg": "21", "body_fat_percentage": "19", "visceral_fat_level": "3",
			},
			{
				"user_id": "a", "measurement_date": "2024-02-01",
				"weight_kg": "49", "muscle_mass_kg": "21.5", "body_fat_percentage": "18.5", "visceral_fat_level": "2",
			},
			{
				"user_id": "a", "measurement_date": "2024-03-01",
				"weight_kg": "48.5", "muscle_mass_kg": "22", "body_fat_percentage": "18", "visceral_fat_level": "2",
			},
		},
	}
	service := newTestService(mock)

	progress, err := service.UserProgress(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, progress)

	assert.Equal(t, "48.5kg", progress.Weight.Current)
	assert.Equal(t, "-0.5kg", progress.Weight.Change)
	assert.Equal(t, "down", progress.Weight.Trend)
	// oldest first for the chart
	assert.Equal(t, []float64{50, 49, 48.5}, progress.Weight.History)

	assert.Equal(t, "22kg", progress.Muscle.Current)
	assert.Equal(t, "+0.5kg", progress.Muscle.Change)
	assert.Equal(t, "up", progress.Muscle.Trend)

	assert.Equal(t, "stable", progress.Visceral.Trend)
	assert.Equal(t, "+0.0", progress.Visceral.Change)
}

func TestService_UserProgress_NoMeasurements(t *testing.T) {
	service := newTestService(&spreadsheetMock{})

	progress, err := service.UserProgress(context.Background(), "a")
	require.NoError(t, err)
	assert.Nil(t, progress)
}

func TestService_UserProgress_SingleMeasurement(t *testing.T) {
	mock := &spreadsheetMock{
		rows: []sheets.Row{
			{
				"user_id": "a", "measurement_date": "2024-03-01",
				"weight_kg": "48.5", "muscle_mass_kg": "22", "body_fat_percentage": "18", "visceral_fat_level": "2",
			},
		},
	}
	service := newTestService(mock)

	progress, err := service.UserProgress(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, progress)

	assert.Equal(t, "0kg", progress.Weight.Change)
	assert.Equal(t, "stable", progress.Weight.Trend)
	assert.Equal(t, []float64{48.5}, progress.Weight.History)
}
