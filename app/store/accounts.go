package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/repairdesk/repairdesk/app/enums"
)

// Account is a user of the desk. Email is the unique key and is compared case-sensitively.
type Account struct {
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // bcrypt
	Role         enums.Role `json:"role"`
	RegisteredAt time.Time  `json:"registered_at"`
}

type accountRow struct {
	Seq          int64  `db:"seq"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	RegisteredAt int64  `db:"registered_at"`
}

// ListAccounts returns all accounts in registration order
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]Account, error) {
	rows := []accountRow{}
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT seq, email, password_hash, role, registered_at FROM accounts ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	res := make([]Account, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.toAccount())
	}
	return res, nil
}

// GetAccount returns account by email
func (s *SQLiteStore) GetAccount(ctx context.Context, email string) (Account, error) {
	var r accountRow
	err := s.db.GetContext(ctx, &r,
		`SELECT seq, email, password_hash, role, registered_at FROM accounts WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("account %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to get account %s: %w", email, err)
	}
	return r.toAccount(), nil
}

// CreateAccount inserts a new account, ErrDuplicate if the email is taken
func (s *SQLiteStore) CreateAccount(ctx context.Context, acc Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash, role, registered_at) VALUES (?, ?, ?, ?)`,
		acc.Email, acc.PasswordHash, acc.Role.String(), unixMilli(acc.RegisteredAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("account %s: %w", acc.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create account %s: %w", acc.Email, err)
	}
	return nil
}

// UpdateAccount overwrites password hash and role of an existing account
func (s *SQLiteStore) UpdateAccount(ctx context.Context, acc Account) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET password_hash = ?, role = ? WHERE email = ?`,
		acc.PasswordHash, acc.Role.String(), acc.Email)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", acc.Email, err)
	}
	return expectAffected(res, "account "+acc.Email)
}

// DeleteAccount removes account by email
func (s *SQLiteStore) DeleteAccount(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", email, err)
	}
	return expectAffected(res, "account "+email)
}

func (r accountRow) toAccount() Account {
	role, err := enums.ParseRole(r.Role)
	if err != nil {
		log.Printf("[WARN] account %s: %v, default to %s", r.Email, err, enums.RoleIntern)
		role = enums.RoleIntern
	}
	return Account{Email: r.Email, PasswordHash: r.PasswordHash, Role: role, RegisteredAt: fromUnixMilli(r.RegisteredAt)}
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
