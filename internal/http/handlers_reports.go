package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

// parseYearSelector parses the year query parameter: "all" spans every
// year with data, a number scopes to that year, absent means the
// current year.
func parseYearSelector(raw string) (core.YearSelector, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return core.SingleYear(time.Now().Year()), nil
	}
	if raw == "all" {
		return core.AllYears(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 3000 {
		return core.YearSelector{}, fmt.Errorf("invalid year %q", raw)
	}
	return core.SingleYear(year), nil
}

func selectorKey(sel core.YearSelector) string {
	if sel.All() {
		return "all"
	}
	year, _ := sel.Year()
	return strconv.Itoa(year)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sel, err := parseYearSelector(r.URL.Query().Get("year"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	key := selectorKey(sel)
	if cached, ok := s.summaryCache.Get(key); ok {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.service.Summary(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sel, err := parseYearSelector(r.URL.Query().Get("year"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	key := selectorKey(sel)
	if cached, ok := s.reportCache.Get(key); ok {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := s.service.Report(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.reportCache.Set(key, report)
	s.writeJSON(w, http.StatusOK, report)
}
