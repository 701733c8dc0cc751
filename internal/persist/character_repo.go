package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gridmud/server/internal/world"
)

// CharacterRepo stores player bodies as JSONB documents, one row per
// character. The body is the compressed serialized entity tree, so carried
// items and worn gear ride along inside it; there are no item tables.
type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// List returns the account's character names in creation order.
func (r *CharacterRepo) List(ctx context.Context, account string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name FROM characters WHERE account_name = $1 ORDER BY created_at, name`,
		account,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Load returns nil, nil when the account has no character by that name.
func (r *CharacterRepo) Load(ctx context.Context, account, name string) (world.Record, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT body FROM characters WHERE account_name = $1 AND name = $2`,
		account, name,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec world.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode body for %s: %w", name, err)
	}
	return rec, nil
}

// NameTaken checks the name across all accounts.
func (r *CharacterRepo) NameTaken(ctx context.Context, name string) (bool, error) {
	var taken bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM characters WHERE name = $1)`, name,
	).Scan(&taken)
	return taken, err
}

// Save upserts the body. Names are unique across accounts, so the conflict
// target is the name alone.
func (r *CharacterRepo) Save(ctx context.Context, account, name string, rec world.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode body for %s: %w", name, err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO characters (account_name, name, body)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		account, name, body,
	)
	return err
}
