// Package sheets talks to the Google Spreadsheet that acts as the
// poor man's database for this app. Every tab is a "table" whose first
// row holds the column names.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftmates/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

var ErrRowNotFound = errors.New("row not found")

// Row is one spreadsheet row keyed by the header column names.
type Row map[string]string

type Client struct {
	srv           *sheets.Service
	spreadsheetID string
	nowFunc       func() time.Time
}

func NewClient(ctx context.Context, spreadsheetID, credentialsPath string) (*Client, error) {
	srv, err := sheets.NewService(
		ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	log.Debugf("sheets client created for spreadsheet: %s", spreadsheetID)

	return &Client{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		nowFunc:       time.Now,
	}, nil
}

// Rows returns all rows of a sheet tab, optionally filtered by exact
// column values.
func (c *Client) Rows(ctx context.Context, sheet string, filters map[string]string) ([]Row, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.rows")
	defer span.End()
	span.SetAttributes(attribute.String("sheet", sheet))

	resp, err := c.srv.Spreadsheets.Values.
		Get(c.spreadsheetID, sheet).
		Context(ctx).
		Do()
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, fmt.Errorf("get values for sheet %s: %w", sheet, err)
	}

	_, rows := rowsFromValues(resp.Values)

	if len(filters) == 0 {
		return rows, nil
	}

	var filtered []Row
	for _, row := range rows {
		if matchesFilters(row, filters) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// Append adds a new row to a sheet tab, stamping created_at and
// updated_at when the tab has such columns.
func (c *Client) Append(ctx context.Context, sheet string, row Row) (Row, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.append")
	defer span.End()
	span.SetAttributes(attribute.String("sheet", sheet))

	header, err := c.header(ctx, sheet)
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, err
	}

	stamped := c.stamp(row, header, true)

	_, err = c.srv.Spreadsheets.Values.
		Append(c.spreadsheetID, sheet, &sheets.ValueRange{
			Values: [][]interface{}{rowToValues(header, stamped)},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	return stamped, nil
}

// Update finds the first row matching the filters, merges the given
// columns into it and writes it back. Returns ErrRowNotFound when no
// row matches.
func (c *Client) Update(ctx context.Context, sheet string, filters map[string]string, row Row) (Row, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.update")
	defer span.End()
	span.SetAttributes(attribute.String("sheet", sheet))

	resp, err := c.srv.Spreadsheets.Values.
		Get(c.spreadsheetID, sheet).
		Context(ctx).
		Do()
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, fmt.Errorf("get values for sheet %s: %w", sheet, err)
	}

	header, rows := rowsFromValues(resp.Values)

	foundIndex := -1
	var found Row
	for i, r := range rows {
		if matchesFilters(r, filters) {
			foundIndex = i
			found = r
			break
		}
	}
	if foundIndex < 0 {
		return nil, ErrRowNotFound
	}

	for col, val := range row {
		found[col] = val
	}
	found = c.stamp(found, header, false)

	// +2: one for the header row, one for 1-based sheet row numbers
	updateRange := fmt.Sprintf("%s!A%d", sheet, foundIndex+2)
	_, err = c.srv.Spreadsheets.Values.
		Update(c.spreadsheetID, updateRange, &sheets.ValueRange{
			Values: [][]interface{}{rowToValues(header, found)},
		}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, fmt.Errorf("update sheet %s: %w", sheet, err)
	}

	return found, nil
}

func (c *Client) header(ctx context.Context, sheet string) ([]string, error) {
	resp, err := c.srv.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!1:1", sheet)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get header for sheet %s: %w", sheet, err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}

	header := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		header = append(header, cellString(cell))
	}
	return header, nil
}

func (c *Client) stamp(row Row, header []string, isNew bool) Row {
	stamped := make(Row, len(row)+2)
	for col, val := range row {
		stamped[col] = val
	}

	now := c.nowFunc().UTC().Format(time.RFC3339)
	for _, col := range header {
		if col == "created_at" && isNew {
			stamped[col] = now
		}
		if col == "updated_at" {
			stamped[col] = now
		}
	}
	return stamped
}
