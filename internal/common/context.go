package common

import (
	"context"

	"yatube/internal/db"
)

type contextKey string

const (
	userKey      contextKey = "user"
	requestIDKey contextKey = "request_id"
)

// WithUser stores the authenticated user for the rest of the request.
func WithUser(ctx context.Context, user *db.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the request's user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *db.User {
	user, _ := ctx.Value(userKey).(*db.User)
	return user
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
