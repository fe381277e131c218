package core

import (
	"math/rand"
	"reflect"
	"testing"
)

func tx(ttype TxType, cat string, year, month, day int, cents int64, opts ...func(*Transaction)) Transaction {
	t := Transaction{
		Type:        ttype,
		CategoryKey: cat,
		Party:       "me",
		Date:        NewDate(year, month, day),
		Amount:      Money{Cents: cents},
	}
	t.Normalize()
	for _, o := range opts {
		o(&t)
	}
	return t
}

func forecast(t *Transaction) { t.IsForecast = true }
func late(t *Transaction)     { t.IsLate = true }

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	if s.PaidActual.Cents != 0 || s.Received.Cents != 0 || s.Forecast.Cents != 0 {
		t.Fatalf("empty input must sum to zero: %+v", s)
	}
	if len(s.ByMonthPaid) != 12 || len(s.ByMonthForecast) != 12 {
		t.Fatalf("month arrays must always have 12 entries")
	}
	for i := range s.ByMonthPaid {
		if s.ByMonthPaid[i].Total.Cents != 0 || s.ByMonthForecast[i].Total.Cents != 0 {
			t.Fatalf("month %d not zero", i+1)
		}
	}
}

func TestSummarizeTotals(t *testing.T) {
	rows := []Transaction{
		tx(TxPaid, CategoryMensalidade, 2025, 1, 5, 10000),
		tx(TxPaid, CategoryMaterial, 2025, 1, 10, 5000),
		tx(TxPaid, CategoryMensalidade, 2025, 2, 5, 10000),
		tx(TxReceived, CategoryPensao, 2025, 1, 5, 20000),
		tx(TxPaid, CategoryExtra, 2025, 3, 1, 7000, forecast),
		tx(TxReceived, CategoryPensao, 2025, 3, 1, 1000, forecast),
	}
	s := Summarize(rows)

	if s.PaidActual.Cents != 25000 {
		t.Fatalf("paidActual = %d, want 25000", s.PaidActual.Cents)
	}
	if s.Received.Cents != 20000 {
		t.Fatalf("recv = %d, want 20000", s.Received.Cents)
	}
	// Forecast counts both types.
	if s.Forecast.Cents != 8000 {
		t.Fatalf("forecast = %d, want 8000", s.Forecast.Cents)
	}

	if s.ByCategory[CategoryMensalidade].Cents != 20000 {
		t.Fatalf("byCat[mensalidade] = %d, want 20000", s.ByCategory[CategoryMensalidade].Cents)
	}
	if s.ByCategory[CategoryMaterial].Cents != 5000 {
		t.Fatalf("byCat[material] = %d, want 5000", s.ByCategory[CategoryMaterial].Cents)
	}
	// Forecast and RECEIVED rows never reach byCat.
	if _, ok := s.ByCategory[CategoryExtra]; ok {
		t.Fatalf("forecast row leaked into byCat")
	}
	if _, ok := s.ByCategory[CategoryPensao]; ok {
		t.Fatalf("received row leaked into byCat")
	}

	if s.ByMonthPaid[0].Total.Cents != 15000 {
		t.Fatalf("byMonthPaid[0].total = %d, want 15000", s.ByMonthPaid[0].Total.Cents)
	}
	if s.ByMonthPaid[0].ByCategory[CategoryMaterial].Cents != 5000 {
		t.Fatalf("byMonthPaid[0] category split wrong")
	}
	if s.ByMonthForecast[2].Total.Cents != 8000 {
		t.Fatalf("byMonthForecast[2].total = %d, want 8000", s.ByMonthForecast[2].Total.Cents)
	}
}

// The worked example from the dashboard contract: an actual PAID row
// and a forecast PAID row in January land in different month arrays.
func TestSummarizeForecastSplit(t *testing.T) {
	rows := []Transaction{
		tx(TxPaid, CategoryExtra, 2025, 1, 5, 10000),
		tx(TxPaid, CategoryExtra, 2025, 1, 20, 5000, forecast),
	}
	s := Summarize(rows)

	if s.ByMonthPaid[0].Total.Cents != 10000 {
		t.Fatalf("byMonthPaid[0].total = %d, want 10000", s.ByMonthPaid[0].Total.Cents)
	}
	if s.ByMonthForecast[0].Total.Cents != 5000 {
		t.Fatalf("byMonthForecast[0].total = %d, want 5000", s.ByMonthForecast[0].Total.Cents)
	}
}

func TestSummarizeOrderInsensitive(t *testing.T) {
	rows := []Transaction{
		tx(TxPaid, CategoryMensalidade, 2025, 1, 5, 499841),
		tx(TxPaid, CategoryMaterial, 2025, 4, 5, 72450),
		tx(TxReceived, CategoryPensao, 2025, 5, 6, 100000, late),
		tx(TxPaid, CategoryExtra, 2026, 2, 5, 150341),
		tx(TxReceived, CategoryPensao, 2026, 1, 12, 200000, late),
		tx(TxPaid, CategoryUniforme, 2025, 7, 1, 9900, forecast),
	}

	want := Summarize(rows)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Transaction(nil), rows...)
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := Summarize(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("summary changed under permutation %d", i)
		}
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	rows := []Transaction{
		tx(TxPaid, CategoryMensalidade, 2025, 1, 5, 499841),
		tx(TxReceived, CategoryPensao, 2025, 1, 5, 200000),
	}
	first := Summarize(rows)
	second := Summarize(rows)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Summarize is not deterministic")
	}
}

func TestFilterByYear(t *testing.T) {
	rows := []Transaction{
		tx(TxPaid, CategoryExtra, 2025, 1, 5, 100),
		tx(TxPaid, CategoryExtra, 2026, 1, 5, 200),
	}
	got := FilterByYear(rows, 2026)
	if len(got) != 1 || got[0].Amount.Cents != 200 {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if out := FilterByYear(rows, 2030); len(out) != 0 {
		t.Fatalf("expected empty slice for absent year")
	}
}
