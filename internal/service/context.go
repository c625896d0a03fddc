package service

import (
	"context"

	"fabrication-service/internal/checkout"
)

type ctxKey string

const ctxSessionIDKey ctxKey = "sessionID"

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxSessionIDKey, id)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxSessionIDKey).(string)
	return v, ok && v != ""
}

func requireSession(ctx context.Context) (string, error) {
	sid, ok := SessionIDFromContext(ctx)
	if !ok {
		return "", checkout.ErrSessionMissing
	}
	return sid, nil
}
