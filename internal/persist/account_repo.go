package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// Account is one login account. Characters hang off it by account name.
type Account struct {
	Name         string
	PasswordHash string
	Banned       bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Load returns nil, nil for unknown accounts.
func (r *AccountRepo) Load(ctx context.Context, name string) (*Account, error) {
	a := &Account{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, password_hash, banned, created_at, last_login_at
		 FROM accounts WHERE name = $1`, name,
	).Scan(&a.Name, &a.PasswordHash, &a.Banned, &a.CreatedAt, &a.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepo) Create(ctx context.Context, name, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	a := &Account{
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		LastLoginAt:  &now,
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO accounts (name, password_hash, created_at, last_login_at)
		 VALUES ($1, $2, $3, $4)`,
		a.Name, a.PasswordHash, a.CreatedAt, a.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepo) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Touch stamps the last-login time.
func (r *AccountRepo) Touch(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET last_login_at = NOW() WHERE name = $1`, name,
	)
	return err
}
