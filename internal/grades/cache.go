package grades

import (
	"context"
	"encoding/json"
	"fmt"
	"journal-backend/internal/components/kv"
	"journal-backend/internal/scrapers/journal"
)

const (
	namespace       = "grades"
	keySavedSubject = "saved_subjects"
)

// Cache holds the subjects of the last successful fetch, serialized as JSON
// under the "grades" namespace of a kv.Store.
type Cache struct {
	kv kv.NamespacedStore
}

func NewCache(store kv.Store) Cache {
	return Cache{kv: kv.Namespace(namespace, store)}
}

// Load returns the cached subjects, an empty slice if nothing was saved yet.
func (c Cache) Load(ctx context.Context) ([]journal.Subject, error) {
	value, ok, err := c.kv.Get(ctx, keySavedSubject)
	if err != nil {
		return []journal.Subject{}, fmt.Errorf("get cache: %w", err)
	}
	if !ok || value == "" {
		return []journal.Subject{}, nil
	}

	subjects := []journal.Subject{}
	err = json.Unmarshal([]byte(value), &subjects)
	if err != nil {
		return []journal.Subject{}, fmt.Errorf("decode cache: %w", err)
	}
	return subjects, nil
}

// Save overwrites the cache with subjects.
func (c Cache) Save(ctx context.Context, subjects []journal.Subject) error {
	if subjects == nil {
		subjects = []journal.Subject{}
	}
	serialized, err := json.Marshal(subjects)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	err = c.kv.Set(ctx, keySavedSubject, string(serialized))
	if err != nil {
		return fmt.Errorf("set cache: %w", err)
	}
	return nil
}
