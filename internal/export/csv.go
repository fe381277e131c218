// Package export renders the ledger in portable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

var csvHeader = []string{
	"id", "date", "academicYear", "academicMonth", "type",
	"categoryKey", "party", "amount", "isLate", "isForecast",
	"notes", "tags",
}

// WriteCSV writes the transactions as semicolon-separated values, the
// dialect Brazilian spreadsheet locales open correctly. Rows come out
// ordered by date then id so repeated exports diff cleanly.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	rows := append([]core.Transaction(nil), txs...)
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].Date.String(), rows[j].Date.String()
		if di != dj {
			return di < dj
		}
		return rows[i].ID < rows[j].ID
	})

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range rows {
		record := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date.String(),
			strconv.Itoa(tx.AcademicYear),
			strconv.Itoa(tx.AcademicMonth),
			string(tx.Type),
			tx.CategoryKey,
			tx.Party,
			tx.Amount.Decimal(),
			strconv.FormatBool(tx.IsLate),
			strconv.FormatBool(tx.IsForecast),
			tx.Notes,
			tx.Tags,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write transaction %d: %w", tx.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
