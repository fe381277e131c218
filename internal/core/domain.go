package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	TxPaid     TxType = "PAID"
	TxReceived TxType = "RECEIVED"
)

// Keys of the seeded system categories. CategoryPensao is the
// reimbursement category the report tracks payment dates for,
// CategoryExtra is the display fallback for unresolved keys.
const (
	CategoryMensalidade = "mensalidade"
	CategoryPensao      = "pensao"
	CategoryMatricula   = "matricula"
	CategoryMaterial    = "material"
	CategoryUniforme    = "uniforme"
	CategoryExtra       = "extra"
)

type (
	TxType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	Transaction struct {
		ID            int64  `json:"id"`
		Type          TxType `json:"type"`
		CategoryKey   string `json:"categoryKey"`
		Party         string `json:"party"`
		Date          Date   `json:"date"`
		AcademicYear  int    `json:"academicYear"`
		AcademicMonth int    `json:"academicMonth"` // 1-12, derived from Date
		Amount        Money  `json:"amount"`
		IsLate        bool   `json:"isLate"` // meaningful only for RECEIVED
		IsForecast    bool   `json:"isForecast"`
		Notes         string `json:"notes"`
		Tags          string `json:"tags"`

		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	Category struct {
		Key    string `json:"key"`
		Label  string `json:"label"`
		Color  string `json:"color"`
		System bool   `json:"system"`
	}

	Party struct {
		Key    string `json:"key"`
		Label  string `json:"label"`
		System bool   `json:"system"`
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category key")
	ErrEmptyParty    = errors.New("empty party key")
	ErrEmptyKey      = errors.New("empty key")
	ErrEmptyLabel    = errors.New("empty label")
	ErrSystemEntry   = errors.New("system entry cannot be deleted")
)

const isoDateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO yyyy-mm-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the calendar month (1-12)
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the calendar year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoDateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TxType) Validate() error {
	switch t {
	case TxPaid, TxReceived:
		return nil
	}
	return ErrInvalidType
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Normalize re-derives the denormalized fields before a save:
// academicYear/academicMonth must always agree with Date, and the late
// flag only exists for received payments.
func (tx *Transaction) Normalize() {
	tx.AcademicYear = tx.Date.Year()
	tx.AcademicMonth = tx.Date.Month()
	if tx.Type != TxReceived {
		tx.IsLate = false
	}
}

func (tx Transaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.CategoryKey) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(tx.Party) == "" {
		return ErrEmptyParty
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return ErrEmptyKey
	}
	if strings.TrimSpace(c.Label) == "" {
		return ErrEmptyLabel
	}
	return nil
}

func (p Party) Validate() error {
	if strings.TrimSpace(p.Key) == "" {
		return ErrEmptyKey
	}
	if strings.TrimSpace(p.Label) == "" {
		return ErrEmptyLabel
	}
	return nil
}

var keyCleaner = regexp.MustCompile(`[^\w\-]`)

// NormalizeKey turns a free-text label into a reference key:
// lowercased, spaces collapsed to underscores, symbols stripped.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "_")
	return keyCleaner.ReplaceAllString(s, "")
}
