package auth

import (
	"context"
	"database/sql"
	"errors"
)

type Account struct {
	MemberID     string
	PasswordHash string
	Role         string
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByID(ctx context.Context, memberID string) (*Account, error)
	Create(ctx context.Context, a *Account) error
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

func (s *Store) GetByID(ctx context.Context, memberID string) (*Account, error) {
	const q = `
SELECT member_id, password_hash, role, is_disabled, created_at
FROM member_accounts
WHERE member_id = ?
LIMIT 1
`
	var a Account
	var isDisabledInt int
	err := s.db.QueryRowContext(ctx, q, memberID).Scan(
		&a.MemberID, &a.PasswordHash, &a.Role, &isDisabledInt, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.IsDisabled = isDisabledInt != 0
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO member_accounts (member_id, password_hash, role, is_disabled)
VALUES (?, ?, ?, ?)
`
	_, err := s.db.ExecContext(ctx, q, a.MemberID, a.PasswordHash, a.Role, a.IsDisabled)
	return err
}
