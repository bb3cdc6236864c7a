package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/sketchbot/internal/storage"
)

// KVStore is the PostgreSQL-backed storage.Provider.
type KVStore struct {
	db *pgxpool.Pool
}

func NewKVStore(db *pgxpool.Pool) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Namespace(name string) storage.Store {
	return &kvNamespace{db: s.db, ns: name}
}

type kvNamespace struct {
	db *pgxpool.Pool
	ns string
}

func (n *kvNamespace) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := n.db.QueryRow(ctx,
		`SELECT entry_val FROM kv_entries WHERE namespace = $1 AND entry_key = $2`,
		n.ns, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (n *kvNamespace) Set(ctx context.Context, key, value string) error {
	_, err := n.db.Exec(ctx, `
		INSERT INTO kv_entries (namespace, entry_key, entry_val, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, entry_key)
		DO UPDATE SET entry_val = EXCLUDED.entry_val, updated_at = now()`,
		n.ns, key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (n *kvNamespace) Remove(ctx context.Context, key string) error {
	if _, err := n.db.Exec(ctx,
		`DELETE FROM kv_entries WHERE namespace = $1 AND entry_key = $2`, n.ns, key,
	); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (n *kvNamespace) Keys(ctx context.Context) ([]string, error) {
	rows, err := n.db.Query(ctx,
		`SELECT entry_key FROM kv_entries WHERE namespace = $1 ORDER BY entry_key`, n.ns)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect keys: %w", err)
	}
	return keys, nil
}
