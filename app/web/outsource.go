package web

import (
	"net/http"

	"github.com/repairdesk/repairdesk/app/outsource"
)

// handleListOutsource returns all ledger records, or records of one job with job_id parameter
func (s *Server) handleListOutsource(w http.ResponseWriter, r *http.Request) {
	var (
		entries []outsource.Entry
		err     error
	)
	if jobID := r.URL.Query().Get("job_id"); jobID != "" {
		entries, err = s.Outsource.AllForJob(r.Context(), jobID)
	} else {
		entries, err = s.Outsource.List(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleOutsourceStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.cachedOutsourceStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCreateOutsource(w http.ResponseWriter, r *http.Request) {
	var in outsource.Input
	if !s.decode(w, r, &in) {
		return
	}
	rec, err := s.Outsource.Save(r.Context(), "", in, accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateOutsource(w http.ResponseWriter, r *http.Request) {
	var in outsource.Input
	if !s.decode(w, r, &in) {
		return
	}
	rec, err := s.Outsource.Save(r.Context(), r.PathValue("id"), in, accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
