// Package auth manages staff accounts and login sessions. The first registered account becomes
// the owner, everybody registering later starts as an intern until the owner promotes them.
// Passwords are kept as bcrypt hashes, sessions live in memory and expire on their own.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	log "github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// errors returned by the service
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrOwnerProtected     = errors.New("owner account can't be changed")
	ErrNoSession          = errors.New("no valid session")
)

const maxSessions = 10000

// Store is the account storage
type Store interface {
	ListAccounts(ctx context.Context) ([]store.Account, error)
	GetAccount(ctx context.Context, email string) (store.Account, error)
	CreateAccount(ctx context.Context, acc store.Account) error
	UpdateAccount(ctx context.Context, acc store.Account) error
	DeleteAccount(ctx context.Context, email string) error
}

// ActivityLogger records user actions
type ActivityLogger interface {
	LogActivity(ctx context.Context, action, user string) error
}

// Params for NewService
type Params struct {
	Store       Store
	Activity    ActivityLogger
	SessionTTL  time.Duration // session lifetime without "remember me", 12h if not set
	RememberTTL time.Duration // session lifetime with "remember me", 30 days if not set
	BcryptCost  int           // bcrypt.DefaultCost if not set
}

// Session is a signed-in account
type Session struct {
	Token      string    `json:"-"`
	Email      string    `json:"email"`
	Persistent bool      `json:"persistent"` // "remember me" was set at login
	Expires    time.Time `json:"expires"`
}

// Service handles registration, login and account administration
type Service struct {
	store       Store
	activity    ActivityLogger
	sessionTTL  time.Duration
	rememberTTL time.Duration
	cost        int

	mu       sync.Mutex // serializes account writes
	sessions cache.Cache[string, Session]
}

// NewService makes account service with in-memory sessions
func NewService(params Params) *Service {
	res := &Service{
		store:       params.Store,
		activity:    params.Activity,
		sessionTTL:  params.SessionTTL,
		rememberTTL: params.RememberTTL,
		cost:        params.BcryptCost,
	}
	if res.sessionTTL <= 0 {
		res.sessionTTL = 12 * time.Hour
	}
	if res.rememberTTL <= 0 {
		res.rememberTTL = 30 * 24 * time.Hour
	}
	if res.cost == 0 {
		res.cost = bcrypt.DefaultCost
	}
	res.sessions = cache.NewCache[string, Session]().WithMaxKeys(maxSessions).WithTTL(res.sessionTTL)
	return res
}

// Register creates an account. The first account without an owner in the store becomes the
// owner, all others are interns.
func (s *Service) Register(ctx context.Context, email, password, confirm string) (store.Account, error) {
	email = strings.TrimSpace(email)
	errs := validate.Errors{}
	if email == "" {
		errs.Add("email", "Email is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}
	if password != confirm {
		errs.Add("confirm_password", "Passwords do not match.")
	}
	if err := errs.Err(); err != nil {
		return store.Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return store.Account{}, fmt.Errorf("can't hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return store.Account{}, fmt.Errorf("can't list accounts: %w", err)
	}
	role := enums.RoleOwner
	for _, a := range accounts {
		if a.Email == email {
			return store.Account{}, fmt.Errorf("%s: %w", email, ErrDuplicateEmail)
		}
		if a.Role == enums.RoleOwner {
			role = enums.RoleIntern
		}
	}

	acc := store.Account{Email: email, PasswordHash: string(hash), Role: role, RegisteredAt: time.Now()}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return store.Account{}, fmt.Errorf("%s: %w", email, ErrDuplicateEmail)
		}
		return store.Account{}, fmt.Errorf("can't create account: %w", err)
	}
	log.Printf("[INFO] account %s registered as %s", email, role)
	s.logActivity(ctx, fmt.Sprintf("Registered account as %s", role), email)
	return acc, nil
}

// Login checks credentials and opens a session. With remember set the session lives
// RememberTTL, otherwise SessionTTL.
func (s *Service) Login(ctx context.Context, email, password string, remember bool) (Session, store.Account, error) {
	acc, err := s.store.GetAccount(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, store.Account{}, ErrInvalidCredentials
		}
		return Session{}, store.Account{}, fmt.Errorf("can't load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		log.Printf("[DEBUG] failed login for %s", email)
		return Session{}, store.Account{}, ErrInvalidCredentials
	}

	ttl := s.sessionTTL
	if remember {
		ttl = s.rememberTTL
	}
	sess := Session{Token: uuid.NewString(), Email: acc.Email, Persistent: remember, Expires: time.Now().Add(ttl)}
	s.sessions.Set(tokenKey(sess.Token), sess, ttl)
	s.logActivity(ctx, "Logged in", acc.Email)
	return sess, acc, nil
}

// Logout closes the session, unknown tokens are ignored
func (s *Service) Logout(token string) {
	s.sessions.Invalidate(tokenKey(token))
}

// Authenticate returns the account of a live session. The account is read from the store so
// role changes apply to open sessions right away.
func (s *Service) Authenticate(ctx context.Context, token string) (store.Account, error) {
	if token == "" {
		return store.Account{}, ErrNoSession
	}
	sess, ok := s.sessions.Get(tokenKey(token))
	if !ok || time.Now().After(sess.Expires) {
		return store.Account{}, ErrNoSession
	}
	acc, err := s.store.GetAccount(ctx, sess.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sessions.Invalidate(tokenKey(token))
			return store.Account{}, ErrNoSession
		}
		return store.Account{}, fmt.Errorf("can't load account: %w", err)
	}
	return acc, nil
}

// ResetPassword replaces the password of the account when current matches the stored one.
// Staff who lost their password get it reset by the owner, see AdminResetPassword.
func (s *Service) ResetPassword(ctx context.Context, email, current, password string) error {
	acc, err := s.store.GetAccount(ctx, email)
	if err != nil {
		return fmt.Errorf("can't load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(current)); err != nil {
		log.Printf("[WARN] password reset for %s rejected, current password mismatch", email)
		return ErrInvalidCredentials
	}
	if err := s.setPassword(ctx, email, password); err != nil {
		return err
	}
	s.logActivity(ctx, "Reset own password", email)
	return nil
}

// AdminResetPassword overwrites the password of any account on behalf of the owner
func (s *Service) AdminResetPassword(ctx context.Context, email, password, actor string) error {
	if err := s.setPassword(ctx, email, password); err != nil {
		return err
	}
	s.logActivity(ctx, fmt.Sprintf("Reset password for %s", email), actor)
	return nil
}

// ChangeRole sets technician or intern role of a non-owner account
func (s *Service) ChangeRole(ctx context.Context, email string, role enums.Role, actor string) (store.Account, error) {
	if role == enums.RoleOwner {
		return store.Account{}, validate.Errors{"role": "owner role can't be assigned"}
	}
	if _, err := enums.ParseRole(string(role)); err != nil {
		return store.Account{}, validate.Errors{"role": err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.store.GetAccount(ctx, email)
	if err != nil {
		return store.Account{}, fmt.Errorf("can't load account: %w", err)
	}
	if acc.Role == enums.RoleOwner {
		return store.Account{}, ErrOwnerProtected
	}
	acc.Role = role
	if err := s.store.UpdateAccount(ctx, acc); err != nil {
		return store.Account{}, fmt.Errorf("can't update account: %w", err)
	}
	s.logActivity(ctx, fmt.Sprintf("Changed role of %s to %s", email, role), actor)
	return acc, nil
}

// Delete removes a non-owner account and closes its sessions
func (s *Service) Delete(ctx context.Context, email, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.store.GetAccount(ctx, email)
	if err != nil {
		return fmt.Errorf("can't load account: %w", err)
	}
	if acc.Role == enums.RoleOwner {
		return ErrOwnerProtected
	}
	if err := s.store.DeleteAccount(ctx, email); err != nil {
		return fmt.Errorf("can't delete account: %w", err)
	}
	s.dropSessions(email)
	s.logActivity(ctx, fmt.Sprintf("Deleted user %s", email), actor)
	return nil
}

// List returns accounts in registration order. Non-empty search keeps accounts with
// case-insensitive substring match in email or role.
func (s *Service) List(ctx context.Context, search string) ([]store.Account, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list accounts: %w", err)
	}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return accounts, nil
	}
	res := make([]store.Account, 0, len(accounts))
	for _, a := range accounts {
		if strings.Contains(strings.ToLower(a.Email), search) || strings.Contains(string(a.Role), search) {
			res = append(res, a)
		}
	}
	return res, nil
}

// SessionTTL returns lifetime of a session with or without "remember me"
func (s *Service) SessionTTL(remember bool) time.Duration {
	if remember {
		return s.rememberTTL
	}
	return s.sessionTTL
}

func (s *Service) setPassword(ctx context.Context, email, password string) error {
	if password == "" {
		return validate.Errors{"password": "Password is required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("can't hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.store.GetAccount(ctx, email)
	if err != nil {
		return fmt.Errorf("can't load account: %w", err)
	}
	acc.PasswordHash = string(hash)
	if err := s.store.UpdateAccount(ctx, acc); err != nil {
		return fmt.Errorf("can't update account: %w", err)
	}
	s.dropSessions(email)
	log.Printf("[INFO] password changed for %s", email)
	return nil
}

// dropSessions closes all sessions of the account
func (s *Service) dropSessions(email string) {
	for _, k := range s.sessions.Keys() {
		if sess, ok := s.sessions.Peek(k); ok && sess.Email == email {
			s.sessions.Invalidate(k)
		}
	}
}

func (s *Service) logActivity(ctx context.Context, action, actor string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.LogActivity(ctx, action, actor); err != nil {
		log.Printf("[WARN] failed to log activity %q: %v", action, err)
	}
}

// tokenKey keeps only a hash of the session token in memory
func tokenKey(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
