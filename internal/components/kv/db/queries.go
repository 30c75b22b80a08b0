package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const getValue = `select value from kv where key = ?`

func (q *Queries) GetValue(ctx context.Context, key string) (string, error) {
	row := q.db.QueryRowContext(ctx, getValue, key)
	var value string
	err := row.Scan(&value)
	return value, err
}

const setValue = `insert into kv (key, value) values (?, ?)
on conflict (key) do update set value = excluded.value`

type SetValueParams struct {
	Key   string
	Value string
}

func (q *Queries) SetValue(ctx context.Context, arg SetValueParams) error {
	_, err := q.db.ExecContext(ctx, setValue, arg.Key, arg.Value)
	return err
}

const deleteValue = `delete from kv where key = ?`

func (q *Queries) DeleteValue(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteValue, key)
	return err
}
