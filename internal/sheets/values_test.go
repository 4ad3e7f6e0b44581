package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsFromValues(t *testing.T) {
	values := [][]interface{}{
		{"user_id", "weight", "date"},
		{"a", "82.5", "2024-03-11"},
		{"b", "90"},
	}

	header, rows := rowsFromValues(values)
	assert.Equal(t, []string{"user_id", "weight", "date"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"user_id": "a", "weight": "82.5", "date": "2024-03-11"}, rows[0])
	// short rows get empty strings
	assert.Equal(t, Row{"user_id": "b", "weight": "90", "date": ""}, rows[1])
}

func TestRowsFromValues_Empty(t *testing.T) {
	header, rows := rowsFromValues(nil)
	assert.Nil(t, header)
	assert.Nil(t, rows)
}

func TestMatchesFilters(t *testing.T) {
	row := Row{"user_id": "a", "status": "completed"}

	assert.True(t, matchesFilters(row, nil))
	assert.True(t, matchesFilters(row, map[string]string{"user_id": "a"}))
	assert.True(t, matchesFilters(row, map[string]string{"user_id": "a", "status": "completed"}))
	assert.False(t, matchesFilters(row, map[string]string{"user_id": "b"}))
	assert.False(t, matchesFilters(row, map[string]string{"nonexistent": "x"}))
}

func TestRowToValues(t *testing.T) {
	header := []string{"user_id", "weight", "date"}
	row := Row{"user_id": "a", "date": "2024-03-11"}

	values := rowToValues(header, row)
	assert.Equal(t, []interface{}{"a", "", "2024-03-11"}, values)
}

func TestWeekStartDate(t *testing.T) {
	testCases := []struct {
		day      string
		expected string
	}{
		{"2024-03-11", "2024-03-11"}, // monday
		{"2024-03-13", "2024-03-11"}, // wednesday
		{"2024-03-17", "2024-03-11"}, // sunday
		{"2024-03-18", "2024-03-18"}, // next monday
	}

	for _, tc := range testCases {
		day, err := time.Parse("2006-01-02", tc.day)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, WeekStartDate(day))
	}
}
