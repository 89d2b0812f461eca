package web

import (
	"context"
	"errors"
	"net/http"
	"slices"

	log "github.com/go-pkgz/lgr"

	"github.com/repairdesk/repairdesk/app/auth"
	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/store"
)

const sessionCookie = "repairdesk-session"

type ctxKey struct{}

// accountFrom returns the signed-in account set by authMiddleware
func accountFrom(ctx context.Context) store.Account {
	acc, _ := ctx.Value(ctxKey{}).(store.Account)
	return acc
}

// handleRegister creates an account, the first one becomes the owner
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	acc, err := s.Accounts.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, acc)
}

// handleLogin checks credentials and sets the session cookie. Without "remember me" the cookie
// has no max-age and goes away with the browser session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	sess, acc, err := s.Accounts.Login(r.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isSecure(r),
	}
	if req.Remember {
		cookie.MaxAge = int(s.Accounts.SessionTTL(true).Seconds())
	}
	http.SetCookie(w, cookie)
	log.Printf("[INFO] %s logged in as %s", acc.Email, acc.Role)
	s.writeJSON(w, http.StatusOK, acc)
}

// handleLogout closes the session and clears the cookie
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.Accounts.Logout(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isSecure(r),
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleForgotPassword sets a new password for the account with given email, the current one is required
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"current_password"`
		Password        string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.Accounts.ResetPassword(r.Context(), req.Email, req.CurrentPassword, req.Password); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.writeJSONError(w, http.StatusNotFound, "Email not found.")
			return
		case errors.Is(err, auth.ErrInvalidCredentials):
			s.writeJSONError(w, http.StatusUnauthorized, "Current password is incorrect.")
			return
		}
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "Password updated successfully."})
}

// handleMe returns the signed-in account
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, accountFrom(r.Context()))
}

// authMiddleware passes requests with a live session and puts the account into the context
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			s.writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		acc, err := s.Accounts.Authenticate(r.Context(), c.Value)
		if err != nil {
			log.Printf("[DEBUG] rejected session for %s: %v", r.URL.Path, err)
			s.writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, acc)))
	})
}

// requireRole rejects accounts without one of the roles
func requireRole(roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc := accountFrom(r.Context())
			if !slices.Contains(roles, acc.Role) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
