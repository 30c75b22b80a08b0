// Package kv is the durable key/value storage the session and the grade cache
// are persisted in.
package kv

import (
	"context"
	"fmt"
)

type Reader interface {
	// Get returns the value stored under key, the bool is false if nothing is stored there.
	Get(ctx context.Context, key string) (string, bool, error)
}

type Writer interface {
	Set(ctx context.Context, key, value string) error
	// Remove does not fail if nothing is stored under key.
	Remove(ctx context.Context, key string) error
}

// Store is a key/value store whose writes survive process restarts.
type Store interface {
	Reader
	Writer

	// Update applies every write made through w atomically, either all of them
	// are visible afterwards or none are (when fn or the commit fails).
	Update(ctx context.Context, fn func(w Writer) error) error
}

// NamespacedStore prefixes every key of an inner Store, this is how logically
// distinct stores share one database.
type NamespacedStore struct {
	namespace string
	inner     Store
}

func Namespace(namespace string, inner Store) NamespacedStore {
	return NamespacedStore{namespace: namespace, inner: inner}
}

func (s NamespacedStore) key(key string) string {
	return fmt.Sprintf("%s.%s", s.namespace, key)
}

func (s NamespacedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.key(key))
}

func (s NamespacedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.key(key), value)
}

func (s NamespacedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.key(key))
}

func (s NamespacedStore) Update(ctx context.Context, fn func(w Writer) error) error {
	return s.inner.Update(ctx, func(w Writer) error {
		return fn(namespacedWriter{namespace: s, inner: w})
	})
}

type namespacedWriter struct {
	namespace NamespacedStore
	inner     Writer
}

func (w namespacedWriter) Set(ctx context.Context, key, value string) error {
	return w.inner.Set(ctx, w.namespace.key(key), value)
}

func (w namespacedWriter) Remove(ctx context.Context, key string) error {
	return w.inner.Remove(ctx, w.namespace.key(key))
}
