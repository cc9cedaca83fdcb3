package middleware

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/hireflow/pkg/models"
)

type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "request_id"
)

// SetIdentity stores the authenticated caller in ctx.
func SetIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the caller resolved by Authenticate.
func GetIdentity(r *http.Request) (models.Identity, bool) {
	id, ok := r.Context().Value(identityKey).(models.Identity)
	return id, ok
}

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
