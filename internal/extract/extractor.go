// Package extract turns raw document text into a best-effort
// transaction guess. Text extraction itself (PDF, OCR) is an external
// capability consumed through TextSource; this package only interprets
// the resulting plain text, behind a narrow interface so the heuristics
// can be swapped without touching the ledger core.
package extract

import (
	"context"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

// Confidence classifies how much of a guess was actually detected.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Guess is the best-effort interpretation of a document's text.
// Amount and Date are nil when not detected; CategoryKey always holds
// at least the fallback category.
type Guess struct {
	Amount      *core.Money `json:"amount"`
	Date        *core.Date  `json:"date"`
	CategoryKey string      `json:"categoryKey"`
	Summary     string      `json:"summary"`
	Confidence  Confidence  `json:"confidence"`
}

// Extractor is the swappable document-interpretation strategy.
type Extractor interface {
	Extract(text string) Guess
}

// TextSource is the external text-extraction capability (PDF reader,
// OCR engine). Only a plain-text passthrough ships here.
type TextSource interface {
	Text(ctx context.Context, data []byte, mimeType string) (string, error)
}

// confidenceFor maps the number of detected fields (of amount, date,
// category) to a classification: all three high, two medium, else low.
func confidenceFor(detected int) Confidence {
	switch detected {
	case 3:
		return ConfidenceHigh
	case 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
