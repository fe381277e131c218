package export

import (
	"strings"
	"testing"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

func exportTx(id int64, date string, cents int64) core.Transaction {
	d, _ := core.ParseDate(date)
	tx := core.Transaction{
		ID:          id,
		Type:        core.TxPaid,
		CategoryKey: core.CategoryMensalidade,
		Party:       "me",
		Date:        d,
		Amount:      core.Money{Cents: cents},
	}
	tx.Normalize()
	return tx
}

func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	txs := []core.Transaction{
		exportTx(2, "2025-02-05", 499841),
		exportTx(1, "2025-01-05", 499841),
	}

	if err := WriteCSV(&b, txs); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "id;date;academicYear;academicMonth;type;categoryKey;party;amount;isLate;isForecast;notes;tags" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	// ordered by date, not insertion
	if !strings.HasPrefix(lines[1], "1;2025-01-05;") {
		t.Fatalf("first row should be the January payment, got %s", lines[1])
	}
	if !strings.Contains(lines[1], ";4998.41;") {
		t.Fatalf("amount should be decimal reais, got %s", lines[1])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(b.String(), "\n"); got != 1 {
		t.Fatalf("empty export should be header only, got %d lines", got)
	}
}
