package sheets

import (
	"fmt"
	"time"
)

func cellString(cell interface{}) string {
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", cell)
}

// rowsFromValues maps raw sheet values to Rows using the first row as
// the column header. Short rows get empty strings for missing columns.
func rowsFromValues(values [][]interface{}) ([]string, []Row) {
	if len(values) == 0 {
		return nil, nil
	}

	header := make([]string, 0, len(values[0]))
	for _, cell := range values[0] {
		header = append(header, cellString(cell))
	}

	rows := make([]Row, 0, len(values)-1)
	for _, rawRow := range values[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rawRow) {
				row[col] = cellString(rawRow[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return header, rows
}

func matchesFilters(row Row, filters map[string]string) bool {
	for col, val := range filters {
		if row[col] != val {
			return false
		}
	}
	return true
}

func rowToValues(header []string, row Row) []interface{} {
	values := make([]interface{}, 0, len(header))
	for _, col := range header {
		values = append(values, row[col])
	}
	return values
}

// WeekStartDate returns the date of the Monday of the week the given
// time falls in, formatted as YYYY-MM-DD.
func WeekStartDate(t time.Time) string {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -daysSinceMonday)
	return monday.Format("2006-01-02")
}
