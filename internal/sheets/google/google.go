// Package google appends ledger transactions to a Google spreadsheet,
// one tab per academic year. Authentication uses a service account;
// the client never reads data back, the spreadsheet is a write-only
// off-site backup.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/deciofranchini-oss/objetivo/internal/core"
	ports "github.com/deciofranchini-oss/objetivo/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base tab name without year; rows land in "<base> <year>".
	sheetBase string

	knownSheets map[string]bool
}

var _ ports.BackupWriter = (*Client)(nil)

// New creates a backup client for the given spreadsheet. Credentials
// come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func New(ctx context.Context, spreadsheetID, sheetBase string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
		knownSheets:   make(map[string]bool),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) sheetName(year int) string {
	return fmt.Sprintf("%s %d", c.sheetBase, year)
}

// WriteTransaction appends the transaction to its academic year's tab,
// creating the tab with a header row on first use.
func (c *Client) WriteTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	sheet := c.sheetName(tx.AcademicYear)
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	row := []any{
		tx.ID,
		tx.Date.String(),
		string(tx.Type),
		tx.CategoryKey,
		tx.Party,
		tx.Amount.Decimal(),
		tx.IsLate,
		tx.IsForecast,
		tx.Notes,
		tx.Tags,
	}

	rng := fmt.Sprintf("%s!A:J", sheet)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

var backupHeader = []any{
	"id", "date", "type", "category", "party",
	"amount", "late", "forecast", "notes", "tags",
}

// ensureSheet creates the yearly tab with a header row when it does
// not exist yet. Results are cached per client; a tab deleted behind
// our back surfaces as an append error.
func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	if c.knownSheets[sheet] {
		return nil
	}

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			c.knownSheets[sheet] = true
			return nil
		}
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheet},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID,
		fmt.Sprintf("%s!A1:J1", sheet),
		&gsheet.ValueRange{Values: [][]any{backupHeader}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header for %s: %w", sheet, err)
	}

	c.knownSheets[sheet] = true
	return nil
}
