package core

// CategoryTotals maps a category key to its summed amount.
type CategoryTotals map[string]Money

// Add accumulates an amount under the given key.
func (ct CategoryTotals) Add(key string, m Money) {
	ct[key] = Money{Cents: ct[key].Cents + m.Cents}
}

// MonthPaid is one calendar month of settled PAID amounts, broken down
// by category. Months without data keep a zero total and an empty map.
type MonthPaid struct {
	ByCategory CategoryTotals `json:"byCat"`
	Total      Money          `json:"total"`
}

// MonthForecast is one calendar month of forecast amounts (any type).
type MonthForecast struct {
	Total Money `json:"total"`
}

// Summary is the dashboard aggregate over an already-filtered
// transaction slice. Both month arrays always hold 12 entries,
// index 0 = January.
type Summary struct {
	PaidActual      Money             `json:"paidActual"`
	Received        Money             `json:"recv"`
	Forecast        Money             `json:"forecast"`
	ByCategory      CategoryTotals    `json:"byCat"`
	ByMonthPaid     [12]MonthPaid     `json:"byMonthPaid"`
	ByMonthForecast [12]MonthForecast `json:"byMonthForecast"`
}

// Summarize computes the dashboard summary over rows. The caller is
// responsible for year filtering; Summarize only sums. It is a pure
// function: no side effects, and the result does not depend on row
// order. Forecast rows count toward Forecast regardless of type and
// never toward the actual totals.
func Summarize(rows []Transaction) Summary {
	s := Summary{ByCategory: CategoryTotals{}}
	for i := range s.ByMonthPaid {
		s.ByMonthPaid[i].ByCategory = CategoryTotals{}
	}

	for _, t := range rows {
		if t.IsForecast {
			s.Forecast.Cents += t.Amount.Cents
			if m := t.AcademicMonth; m >= 1 && m <= 12 {
				s.ByMonthForecast[m-1].Total.Cents += t.Amount.Cents
			}
			continue
		}

		switch t.Type {
		case TxPaid:
			s.PaidActual.Cents += t.Amount.Cents
			s.ByCategory.Add(t.CategoryKey, t.Amount)
			if m := t.AcademicMonth; m >= 1 && m <= 12 {
				s.ByMonthPaid[m-1].Total.Cents += t.Amount.Cents
				s.ByMonthPaid[m-1].ByCategory.Add(t.CategoryKey, t.Amount)
			}
		case TxReceived:
			s.Received.Cents += t.Amount.Cents
		}
	}

	return s
}

// FilterByYear returns the rows whose academic year matches. It is the
// dashboard-side year filter; the report applies its own selection.
func FilterByYear(rows []Transaction, year int) []Transaction {
	out := make([]Transaction, 0, len(rows))
	for _, t := range rows {
		if t.AcademicYear == year {
			out = append(out, t)
		}
	}
	return out
}
