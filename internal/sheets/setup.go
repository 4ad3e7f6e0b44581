package sheets

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// tab names and their header rows; every tab also carries the
// created_at/updated_at columns stamped by the client on writes.
var tabHeaders = []struct {
	name   string
	header []string
}{
	{
		name: "workouts",
		header: []string{
			"workout_id", "user_id", "scheduled_date", "title", "description",
			"estimated_duration", "primary_muscle_groups", "created_at", "updated_at",
		},
	},
	{
		name: "workout_exercises",
		header: []string{
			"workout_id", "order_index", "exercise_id", "name", "category",
			"sets", "reps", "weight", "rest_time", "notes", "created_at", "updated_at",
		},
	},
	{
		name: "workout_sessions",
		header: []string{
			"user_id", "workout_date", "duration", "duration_seconds",
			"completion_percentage", "exercises_completed", "total_exercises",
			"created_at", "updated_at",
		},
	},
	{
		name: "exercise_sets",
		header: []string{
			"user_id", "exercise_id", "exercise_name", "workout_date",
			"set_number", "duration_seconds", "created_at", "updated_at",
		},
	},
	{
		name: "users",
		header: []string{
			"user_id", "name", "age", "goal", "current_weight_kg",
			"last_updated", "created_at", "updated_at",
		},
	},
	{
		name: "weekly_status",
		header: []string{
			"user_id", "week_start_date", "monday", "tuesday", "wednesday",
			"thursday", "friday", "saturday", "sunday", "created_at", "updated_at",
		},
	},
	{
		name: "body_measurements",
		header: []string{
			"user_id", "measurement_date", "weight_kg", "muscle_mass_kg",
			"body_fat_percentage", "visceral_fat_level", "created_at", "updated_at",
		},
	},
}

// Setup creates the missing tabs in the spreadsheet and (re)writes
// their header rows. Safe to run repeatedly.
func Setup(ctx context.Context, spreadsheetID, credentialsPath string) error {
	srv, err := sheets.NewService(
		ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return fmt.Errorf("create sheets service: %w", err)
	}

	spreadsheet, err := srv.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", spreadsheetID, err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, sh := range spreadsheet.Sheets {
		existing[sh.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, tab := range tabHeaders {
		if existing[tab.name] {
			log.Debugf("tab [%s] already there", tab.name)
			continue
		}
		log.Printf("will create tab: %s", tab.name)
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: tab.name,
				},
			},
		})
	}

	if len(requests) > 0 {
		_, err = srv.Spreadsheets.
			BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: requests,
			}).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("create tabs: %w", err)
		}
	}

	for _, tab := range tabHeaders {
		headerCells := make([]interface{}, 0, len(tab.header))
		for _, col := range tab.header {
			headerCells = append(headerCells, col)
		}

		_, err = srv.Spreadsheets.Values.
			Update(spreadsheetID, fmt.Sprintf("%s!1:1", tab.name), &sheets.ValueRange{
				Values: [][]interface{}{headerCells},
			}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("write header for tab %s: %w", tab.name, err)
		}
		log.Printf("header written for tab: %s", tab.name)
	}

	return nil
}
