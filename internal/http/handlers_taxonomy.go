package http

import (
	"encoding/json"
	"net/http"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.service.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	s.writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	c.System = false // clients never create system entries

	saved, err := s.service.SaveCategory(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteCategory(r.Context(), r.PathValue("key")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListParties(w http.ResponseWriter, r *http.Request) {
	parties, err := s.service.ListParties(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if parties == nil {
		parties = []core.Party{}
	}
	s.writeJSON(w, http.StatusOK, parties)
}

func (s *Server) handleSaveParty(w http.ResponseWriter, r *http.Request) {
	var p core.Party
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	p.System = false

	saved, err := s.service.SaveParty(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteParty(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteParty(r.Context(), r.PathValue("key")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
