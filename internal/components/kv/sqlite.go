package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"journal-backend/internal/components/kv/db"
)

// SqliteStore persists values in a single `kv` table of a sqlite (or libsql) database.
type SqliteStore struct {
	db  *sql.DB
	qry *db.Queries
}

// NewSqliteStore creates the `kv` table if it does not exist yet.
func NewSqliteStore(ctx context.Context, database *sql.DB) (SqliteStore, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return SqliteStore{}, fmt.Errorf("kv: create schema: %w", err)
	}
	return SqliteStore{
		db:  database,
		qry: db.New(database),
	}, nil
}

func (s SqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.qry.GetValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s SqliteStore) Set(ctx context.Context, key, value string) error {
	return sqliteWriter{qry: s.qry}.Set(ctx, key, value)
}

func (s SqliteStore) Remove(ctx context.Context, key string) error {
	return sqliteWriter{qry: s.qry}.Remove(ctx, key)
}

func (s SqliteStore) Update(ctx context.Context, fn func(w Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kv: begin tx: %w", err)
	}
	defer tx.Rollback()

	err = fn(sqliteWriter{qry: s.qry.WithTx(tx)})
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("kv: commit: %w", err)
	}
	return nil
}

type sqliteWriter struct {
	qry *db.Queries
}

func (w sqliteWriter) Set(ctx context.Context, key, value string) error {
	err := w.qry.SetValue(ctx, db.SetValueParams{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (w sqliteWriter) Remove(ctx context.Context, key string) error {
	err := w.qry.DeleteValue(ctx, key)
	if err != nil {
		return fmt.Errorf("kv: remove %s: %w", key, err)
	}
	return nil
}
