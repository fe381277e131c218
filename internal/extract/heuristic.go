package extract

import (
	"regexp"
	"strings"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

var (
	moneyRx      = regexp.MustCompile(`(?i)R\$\s*([\d.,]{3,})`)
	labeledRx    = regexp.MustCompile(`(?i)(?:total|valor)\s*[:\-]?\s*([\d.,]{3,})`)
	brDateRx     = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
	whitespaceRx = regexp.MustCompile(`\s+`)
)

// categoryKeywords maps school-ledger categories to the Portuguese
// keywords that identify them in receipts. Order matters: the first
// match wins, with pensao checked before the school fees.
var categoryKeywords = []struct {
	key string
	rx  *regexp.Regexp
}{
	{core.CategoryPensao, regexp.MustCompile(`(?i)pens[aã]o|aliment[ií]cia`)},
	{core.CategoryMensalidade, regexp.MustCompile(`(?i)mensal(idade)?`)},
	{core.CategoryMatricula, regexp.MustCompile(`(?i)matr[ií]cula`)},
	{core.CategoryMaterial, regexp.MustCompile(`(?i)material|livro|apostila`)},
	{core.CategoryUniforme, regexp.MustCompile(`(?i)uniforme|camiseta|agasalho`)},
	{core.CategoryExtra, regexp.MustCompile(`(?i)excurs|extra|passeio|evento|teatro`)},
}

// HeuristicExtractor guesses amount, date and category from receipt
// text with regular expressions. It is deliberately simple and fully
// replaceable through the Extractor interface.
type HeuristicExtractor struct{}

func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

var _ Extractor = (*HeuristicExtractor)(nil)

func (e *HeuristicExtractor) Extract(text string) Guess {
	g := Guess{
		CategoryKey: core.CategoryExtra,
		Summary:     summarize(text),
	}

	detected := 0

	if amount, ok := parseMoney(text); ok {
		g.Amount = &amount
		detected++
	}
	if date, ok := parseBRDate(text); ok {
		g.Date = &date
		detected++
	}
	if key, ok := inferCategory(text); ok {
		g.CategoryKey = key
		detected++
	}

	g.Confidence = confidenceFor(detected)
	return g
}

// parseMoney collects every "R$ 1.234,56" and labeled "Total: 1234,56"
// value and returns the largest, on the assumption that the payable
// total dominates the document.
func parseMoney(text string) (core.Money, bool) {
	var raw []string
	for _, m := range moneyRx.FindAllStringSubmatch(text, -1) {
		raw = append(raw, m[1])
	}
	for _, m := range labeledRx.FindAllStringSubmatch(text, -1) {
		raw = append(raw, m[1])
	}

	best := core.Money{Cents: -1}
	for _, s := range raw {
		// Brazilian format: dots are thousands separators
		normalized := strings.ReplaceAll(s, ".", "")
		cents, err := core.ParseAmountToCents(normalized)
		if err != nil {
			continue
		}
		if cents > best.Cents {
			best = core.Money{Cents: cents}
		}
	}
	if best.Cents < 0 {
		return core.Money{}, false
	}
	return best, true
}

// parseBRDate finds the first dd/mm/yyyy date.
func parseBRDate(text string) (core.Date, bool) {
	m := brDateRx.FindStringSubmatch(text)
	if m == nil {
		return core.Date{}, false
	}
	iso := m[3] + "-" + pad2(m[2]) + "-" + pad2(m[1])
	d, err := core.ParseDate(iso)
	if err != nil {
		return core.Date{}, false
	}
	return d, true
}

func inferCategory(text string) (string, bool) {
	for _, kw := range categoryKeywords {
		if kw.rx.MatchString(text) {
			return kw.key, true
		}
	}
	return "", false
}

// summarize keeps the first non-empty line, capped at 120 characters.
func summarize(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(whitespaceRx.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if runes := []rune(line); len(runes) > 120 {
			return string(runes[:120])
		}
		return line
	}
	return "Documento analisado."
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
