// Package web implements the JSON API server of the repair desk
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/repairdesk/repairdesk/app/auth"
	"github.com/repairdesk/repairdesk/app/config"
	"github.com/repairdesk/repairdesk/app/desk"
	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/lifecycle"
	"github.com/repairdesk/repairdesk/app/outsource"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

// request body limit, photos up to 2MB come base64 encoded
const maxBodySize = 4 * 1024 * 1024

// JobService is the front desk job handling
type JobService interface {
	All(ctx context.Context) ([]store.Job, error)
	List(ctx context.Context, q desk.Query, loc *time.Location) (desk.Page, error)
	Stats(ctx context.Context) ([]desk.StatusCount, error)
	Technicians(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (store.Job, error)
	View(ctx context.Context, id, actor string) (store.Job, error)
	Create(ctx context.Context, in desk.JobInput, actor string) (store.Job, error)
	Update(ctx context.Context, id string, in desk.JobInput, actor string) (store.Job, error)
	Collect(ctx context.Context, id, actor string) (store.Job, error)
	Delete(ctx context.Context, id, actor string) error
	Reset(ctx context.Context, actor string) (int, error)
	WhatsApp(ctx context.Context, id, actor string) (string, error)
}

// OutsourceService is the outsource ledger
type OutsourceService interface {
	Save(ctx context.Context, id string, in outsource.Input, actor string) (store.OutsourceRecord, error)
	List(ctx context.Context) ([]outsource.Entry, error)
	ForJob(ctx context.Context, jobID string) (outsource.Entry, error)
	AllForJob(ctx context.Context, jobID string) ([]outsource.Entry, error)
	Stats(ctx context.Context) (outsource.Stats, error)
	Subscribe(fn func(store.OutsourceRecord))
}

// AccountService handles accounts and sessions
type AccountService interface {
	Register(ctx context.Context, email, password, confirm string) (store.Account, error)
	Login(ctx context.Context, email, password string, remember bool) (auth.Session, store.Account, error)
	Logout(token string)
	Authenticate(ctx context.Context, token string) (store.Account, error)
	ResetPassword(ctx context.Context, email, current, password string) error
	AdminResetPassword(ctx context.Context, email, password, actor string) error
	ChangeRole(ctx context.Context, email string, role enums.Role, actor string) (store.Account, error)
	Delete(ctx context.Context, email, actor string) error
	List(ctx context.Context, search string) ([]store.Account, error)
	SessionTTL(remember bool) time.Duration
}

// ActivityLog is the capped audit trail
type ActivityLog interface {
	ListActivity(ctx context.Context) ([]store.ActivityEntry, error)
	LogActivity(ctx context.Context, action, user string) error
}

// Reporter renders printable job reports
type Reporter interface {
	Render(w io.Writer, jobs []store.Job, generated time.Time) error
}

// Config holds server dependencies and settings
type Config struct {
	Jobs      JobService
	Outsource OutsourceService
	Accounts  AccountService
	Activity  ActivityLog
	Reporter  Reporter
	Shop      config.Shop
	Version   string
	LoginRate float64 // login and password reset attempts per second per client, 1 if not set
}

// Server is the web API server
type Server struct {
	Config
	csrfProtection *http.CrossOriginProtection
	loginLimiter   *limiter.Limiter

	statsMu        sync.Mutex
	outsourceStats *outsource.Stats // cached, reset on every ledger change
}

// New makes a server and subscribes it to ledger changes
func New(cfg Config) (*Server, error) {
	if cfg.Jobs == nil || cfg.Outsource == nil || cfg.Accounts == nil || cfg.Activity == nil {
		return nil, errors.New("web server initialization failed: jobs, outsource, accounts and activity are required")
	}
	if cfg.LoginRate <= 0 {
		cfg.LoginRate = 1
	}
	lmt := tollbooth.NewLimiter(cfg.LoginRate, nil)
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"error":"too many attempts"}`)

	s := &Server{Config: cfg, csrfProtection: http.NewCrossOriginProtection(), loginLimiter: lmt}
	cfg.Outsource.Subscribe(func(store.OutsourceRecord) { s.resetOutsourceStats() })
	return s, nil
}

// Run starts the web server and shuts it down when ctx is done
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting web server on %s", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("repairdesk", "repairdesk", s.Version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(maxBodySize),
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
	)

	router.Handle("GET /metrics", promhttp.Handler())

	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache, s.csrfProtection.Handler)

		// public account routes
		api.HandleFunc("POST /auth/register", s.handleRegister)
		api.With(tollbooth.HTTPMiddleware(s.loginLimiter)).HandleFunc("POST /auth/login", s.handleLogin)
		api.HandleFunc("POST /auth/logout", s.handleLogout)
		api.With(tollbooth.HTTPMiddleware(s.loginLimiter)).HandleFunc("POST /auth/forgot-password", s.handleForgotPassword)

		// signed-in staff
		api.Group().Route(func(b *routegroup.Bundle) {
			b.Use(s.authMiddleware)
			b.HandleFunc("GET /auth/me", s.handleMe)

			b.HandleFunc("GET /jobs", s.handleListJobs)
			b.HandleFunc("POST /jobs", s.handleCreateJob)
			b.HandleFunc("GET /jobs/technicians", s.handleTechnicians)
			b.HandleFunc("GET /jobs/export.csv", s.handleExportJobs)
			b.HandleFunc("GET /jobs/report", s.handleJobsReport)
			b.HandleFunc("GET /jobs/{id}", s.handleGetJob)
			b.HandleFunc("GET /jobs/{id}/whatsapp", s.handleWhatsApp)
			b.HandleFunc("GET /jobs/{id}/report", s.handleJobReport)
			b.HandleFunc("GET /jobs/{id}/outsource", s.handleJobOutsource)
			b.HandleFunc("GET /stats", s.handleStats)
			b.HandleFunc("GET /activity", s.handleActivity)

			b.HandleFunc("GET /outsource", s.handleListOutsource)
			b.HandleFunc("GET /outsource/stats", s.handleOutsourceStats)
			b.HandleFunc("POST /outsource", s.handleCreateOutsource)
			b.HandleFunc("PUT /outsource/{id}", s.handleUpdateOutsource)

			// interns can't change existing jobs
			b.With(requireRole(enums.RoleOwner, enums.RoleTechnician)).Route(func(staff *routegroup.Bundle) {
				staff.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
				staff.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
				staff.HandleFunc("POST /jobs/{id}/collect", s.handleCollectJob)
			})

			b.With(requireRole(enums.RoleOwner)).Route(func(owner *routegroup.Bundle) {
				owner.HandleFunc("DELETE /jobs", s.handleResetJobs)
				owner.HandleFunc("GET /users", s.handleListUsers)
				owner.HandleFunc("GET /users/export.csv", s.handleExportUsers)
				owner.HandleFunc("PUT /users/{email}/role", s.handleChangeRole)
				owner.HandleFunc("PUT /users/{email}/password", s.handleAdminResetPassword)
				owner.HandleFunc("DELETE /users/{email}", s.handleDeleteUser)
			})
		})
	})

	return router
}

// errorResponse is the JSON body of a failed request
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps service errors to http status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validate.Errors
	switch {
	case errors.As(err, &fields):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
	case errors.Is(err, store.ErrNotFound):
		s.writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.writeJSONError(w, http.StatusUnauthorized, "Invalid credentials. Please try again.")
	case errors.Is(err, auth.ErrDuplicateEmail), errors.Is(err, store.ErrDuplicate):
		s.writeJSONError(w, http.StatusConflict, "Email already registered.")
	case errors.Is(err, lifecycle.ErrTerminal):
		s.writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrOwnerProtected):
		s.writeJSONError(w, http.StatusForbidden, err.Error())
	default:
		log.Printf("[ERROR] %s %s: %v", r.Method, r.URL.Path, err)
		s.writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads JSON request body into v, writes 400 and returns false on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("[DEBUG] bad request body for %s: %v", r.URL.Path, err)
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) resetOutsourceStats() {
	s.statsMu.Lock()
	s.outsourceStats = nil
	s.statsMu.Unlock()
}

// cachedOutsourceStats returns ledger stats, computed once per ledger change
func (s *Server) cachedOutsourceStats(ctx context.Context) (outsource.Stats, error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if s.outsourceStats != nil {
		return *s.outsourceStats, nil
	}
	st, err := s.Outsource.Stats(ctx)
	if err != nil {
		return outsource.Stats{}, err
	}
	s.outsourceStats = &st
	return st, nil
}
