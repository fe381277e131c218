package core

import "sort"

// YearSelector picks either a single calendar year or every year that
// has data. The zero value is not meaningful; use AllYears or
// SingleYear. Keeping the selector typed means invalid strings like
// "20xx" never reach the report code.
type YearSelector struct {
	all  bool
	year int
}

// AllYears selects every year present in the data.
func AllYears() YearSelector { return YearSelector{all: true} }

// SingleYear selects one specific year, whether or not it has data.
func SingleYear(year int) YearSelector { return YearSelector{year: year} }

// All reports whether the selector covers all years.
func (s YearSelector) All() bool { return s.all }

// Year returns the selected year and false when the selector is "all".
func (s YearSelector) Year() (int, bool) { return s.year, !s.all }

// MonthReport is one row of the printable report.
type MonthReport struct {
	Year       int            `json:"year"`
	Month      int            `json:"month"`
	PaidActual Money          `json:"paidActual"`
	Received   Money          `json:"received"`
	Forecast   Money          `json:"forecast"`
	// PensaoPaymentDate is the date of the most recent settled pensao
	// payment in the month, nil when there were none.
	PensaoPaymentDate *Date `json:"pensaoPaymentDate"`
	// PensaoLate is true when any settled pensao payment in the month
	// was late, independently of which payment supplies the date.
	PensaoLate bool           `json:"pensaoLate"`
	ByCategory CategoryTotals `json:"byCat"`
}

// YearTotals is the element-wise sum of a year's 12 month rows.
type YearTotals struct {
	PaidActual Money          `json:"paidActual"`
	Received   Money          `json:"received"`
	Forecast   Money          `json:"forecast"`
	ByCategory CategoryTotals `json:"byCat"`
}

// YearReport is a full year block: always exactly 12 months.
type YearReport struct {
	Year   int             `json:"year"`
	Months [12]MonthReport `json:"months"`
	Totals YearTotals      `json:"totals"`
}

// Report is the structured year-scoped report.
type Report struct {
	YearsAvailable []int        `json:"yearsAvailable"`
	Years          []int        `json:"years"`
	Blocks         []YearReport `json:"blocks"`
}

// BuildReport computes the report for the given selector.
//
// Year selection is deliberately asymmetric, matching observed app
// behavior: a single selected year always yields 12 month rows even
// when empty, while "all" yields only years that contain at least one
// transaction. Do not unify the two policies.
func BuildReport(txs []Transaction, sel YearSelector) Report {
	yearsAvailable := distinctYears(txs)

	var years []int
	if sel.All() {
		years = yearsAvailable
	} else {
		y, _ := sel.Year()
		years = []int{y}
	}

	blocks := make([]YearReport, 0, len(years))
	for _, y := range years {
		blocks = append(blocks, buildYear(txs, y))
	}

	return Report{
		YearsAvailable: yearsAvailable,
		Years:          years,
		Blocks:         blocks,
	}
}

func buildYear(txs []Transaction, year int) YearReport {
	yr := YearReport{
		Year:   year,
		Totals: YearTotals{ByCategory: CategoryTotals{}},
	}

	for m := 1; m <= 12; m++ {
		mr := buildMonth(txs, year, m)
		yr.Months[m-1] = mr

		yr.Totals.PaidActual.Cents += mr.PaidActual.Cents
		yr.Totals.Received.Cents += mr.Received.Cents
		yr.Totals.Forecast.Cents += mr.Forecast.Cents
		for k, v := range mr.ByCategory {
			yr.Totals.ByCategory.Add(k, v)
		}
	}

	return yr
}

func buildMonth(txs []Transaction, year, month int) MonthReport {
	mr := MonthReport{
		Year:       year,
		Month:      month,
		ByCategory: CategoryTotals{},
	}

	var pensao []Transaction
	for _, t := range txs {
		if t.AcademicYear != year || t.AcademicMonth != month {
			continue
		}

		if t.IsForecast {
			mr.Forecast.Cents += t.Amount.Cents
			continue
		}

		switch t.Type {
		case TxPaid:
			mr.PaidActual.Cents += t.Amount.Cents
			mr.ByCategory.Add(t.CategoryKey, t.Amount)
		case TxReceived:
			mr.Received.Cents += t.Amount.Cents
			if t.CategoryKey == CategoryPensao {
				pensao = append(pensao, t)
			}
		}
	}

	if len(pensao) > 0 {
		// A month may hold several pensao payments. The displayed date
		// is the latest one; the late flag is true when any payment was
		// late. The two rules are independent: the shown date may
		// belong to an on-time payment while an earlier late one still
		// taints the month.
		sort.SliceStable(pensao, func(i, j int) bool {
			return pensao[i].Date.Before(pensao[j].Date.Time)
		})
		last := pensao[len(pensao)-1].Date
		mr.PensaoPaymentDate = &last
		for _, t := range pensao {
			if t.IsLate {
				mr.PensaoLate = true
				break
			}
		}
	}

	return mr
}

func distinctYears(txs []Transaction) []int {
	seen := map[int]struct{}{}
	var years []int
	for _, t := range txs {
		if _, ok := seen[t.AcademicYear]; !ok {
			seen[t.AcademicYear] = struct{}{}
			years = append(years, t.AcademicYear)
		}
	}
	sort.Ints(years)
	return years
}
