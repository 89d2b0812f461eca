package web

import (
	"bytes"
	"net/http"
	"time"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/export"
	"github.com/repairdesk/repairdesk/app/validate"
)

// handleListUsers returns accounts, search parameter filters by email or role
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.Accounts.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.Accounts.List(r.Context(), "")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.UsersCSV(&buf, accounts, s.Shop.Location()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCSV(w, export.FileName(s.Shop.Name, "Users", time.Now().In(s.Shop.Location())), &buf)
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	role, err := enums.ParseRole(req.Role)
	if err != nil {
		s.writeError(w, r, validate.Errors{"role": err.Error()})
		return
	}
	acc, err := s.Accounts.ChangeRole(r.Context(), r.PathValue("email"), role, accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleAdminResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	err := s.Accounts.AdminResetPassword(r.Context(), r.PathValue("email"), req.Password, accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.Accounts.Delete(r.Context(), r.PathValue("email"), accountFrom(r.Context()).Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
