package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// optional scope; no parameter means the full ledger
	if raw := r.URL.Query().Get("year"); raw != "" {
		sel, err := parseYearSelector(raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		if year, ok := sel.Year(); ok {
			txs = core.FilterByYear(txs, year)
		}
	}

	if txs == nil {
		txs = []core.Transaction{}
	}
	s.writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	tx, err := s.service.GetTransaction(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	tx.ID = 0 // creation never overwrites an existing row

	saved, err := s.service.SaveTransaction(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAggregations()
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	tx.ID = id // the path wins over any id in the body

	saved, err := s.service.SaveTransaction(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAggregations()
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	if err := s.service.DeleteTransaction(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAggregations()
	w.WriteHeader(http.StatusNoContent)
}
