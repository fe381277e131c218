package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/deciofranchini-oss/objetivo/internal/export"
	"github.com/deciofranchini-oss/objetivo/internal/ledger"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="objetivo-export.csv"`)
	if err := export.WriteCSV(w, txs); err != nil {
		s.logger.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Backup(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var snap ledger.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if err := s.service.Restore(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAggregations()
	s.writeJSON(w, http.StatusOK, map[string]int{
		"transactions": len(snap.Transactions),
		"categories":   len(snap.Categories),
		"parties":      len(snap.Parties),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reset(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateAggregations()
	w.WriteHeader(http.StatusNoContent)
}

const maxDocumentSize = 10 << 20 // 10 MiB

// handleSubmitDocument accepts a multipart upload and queues it for
// extraction. The response carries the document id; the draft
// transaction appears once the worker is through.
func (s *Server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart body"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	docID, err := s.service.SubmitDocument(r.Context(), header.Filename, mimeType, payload)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.invalidateAggregations()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"documentId": docID})
}
