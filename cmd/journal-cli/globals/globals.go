package globals

import (
	"context"
	"journal-backend/internal/service"
)

type ctxKey struct{}

type Value struct {
	Journal *service.Journal
	Config  Config
}

// Config is what commands need from the config file beyond the journal itself.
type Config struct {
	RefreshCron string
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, ctxKey{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(ctxKey{}).(*Value)
}
