package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

const (
	opTimeout = 5 * time.Second
	// DurableScope: область ключей долговременных коллекций витрины.
	DurableScope = "durable"
)

type kvStore struct {
	db    *sql.DB
	scope string
}

// NewKVStore создаёт PostgreSQL-реализацию KVStore в рамках области scope.
func NewKVStore(store *Store, scope string) domain.KVStore {
	return &kvStore{db: store.DB(), scope: scope}
}

func (r *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM kv_entries WHERE scope = $1 AND key = $2
	`, r.scope, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select kv entry: %w", err)
	}
	return value, true, nil
}

func (r *kvStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_entries (scope, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, r.scope, key, value)
	if err != nil {
		if isCapacityError(err) {
			return fmt.Errorf("upsert kv entry: %w: %w", domain.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("upsert kv entry: %w", err)
	}
	return nil
}

func (r *kvStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM kv_entries WHERE scope = $1 AND key = $2
	`, r.scope, key); err != nil {
		return fmt.Errorf("delete kv entry: %w", err)
	}
	return nil
}

// isCapacityError распознаёт ошибки нехватки места и превышения лимитов PostgreSQL.
func isCapacityError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "53100", "54000":
			return true
		}
	}
	return false
}

var _ domain.KVStore = (*kvStore)(nil)
