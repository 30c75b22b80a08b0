package kv

import (
	"context"
	"fmt"
	"journal-backend/lib/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newSqliteStore(t testing.TB) SqliteStore {
	store, err := NewSqliteStore(context.Background(), testutil.OpenSqlite(t))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": newSqliteStore(t),
	}
}

func TestStore(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()

			_, ok, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Set(ctx, "username", "ivanov"))
			value, ok, err := store.Get(ctx, "username")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "ivanov", value)

			require.NoError(t, store.Set(ctx, "username", "petrov"))
			value, _, err = store.Get(ctx, "username")
			require.NoError(t, err)
			require.Equal(t, "petrov", value)

			require.NoError(t, store.Remove(ctx, "username"))
			_, ok, err = store.Get(ctx, "username")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Remove(ctx, "never-set"))
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "stale", "1"))

			err := store.Update(ctx, func(w Writer) error {
				if err := w.Set(ctx, "a", "1"); err != nil {
					return err
				}
				if err := w.Set(ctx, "b", "2"); err != nil {
					return err
				}
				return w.Remove(ctx, "stale")
			})
			require.NoError(t, err)

			for key, expected := range map[string]string{"a": "1", "b": "2"} {
				value, ok, err := store.Get(ctx, key)
				require.NoError(t, err)
				require.True(t, ok)
				require.Equal(t, expected, value)
			}
			_, ok, err := store.Get(ctx, "stale")
			require.NoError(t, err)
			require.False(t, ok)

			failure := fmt.Errorf("abort")
			err = store.Update(ctx, func(w Writer) error {
				if err := w.Set(ctx, "a", "changed"); err != nil {
					return err
				}
				if err := w.Remove(ctx, "b"); err != nil {
					return err
				}
				return failure
			})
			require.ErrorIs(t, err, failure)

			value, _, err := store.Get(ctx, "a")
			require.NoError(t, err)
			require.Equal(t, "1", value)
			_, ok, err = store.Get(ctx, "b")
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestNamespace(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	session := Namespace("session", inner)
	grades := Namespace("grades", inner)

	require.NoError(t, session.Set(ctx, "value", "session"))
	require.NoError(t, grades.Update(ctx, func(w Writer) error {
		return w.Set(ctx, "value", "grades")
	}))

	value, _, err := session.Get(ctx, "value")
	require.NoError(t, err)
	require.Equal(t, "session", value)

	value, _, err = grades.Get(ctx, "value")
	require.NoError(t, err)
	require.Equal(t, "grades", value)

	value, ok, err := inner.Get(ctx, "session.value")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "session", value)

	require.NoError(t, grades.Remove(ctx, "value"))
	_, ok, err = session.Get(ctx, "value")
	require.NoError(t, err)
	require.True(t, ok)
}
