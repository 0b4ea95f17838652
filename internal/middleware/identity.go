package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// ctxKey is a private type so no other package can collide with our context keys.
type ctxKey int

const userIDKey ctxKey = iota

// NewIdentityHandler returns a middleware that resolves the caller's identity
// from the X-User-ID header set by the auth gateway in front of this service.
// The booking core never authenticates anyone itself — it only consumes the
// already-resolved identity. A missing or malformed header is an immediate
// 401: no identity is never a default-permit.
func NewIdentityHandler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-User-ID")
			if raw == "" {
				unauthorized(w, "identity required")
				return
			}
			userID, err := uuid.Parse(raw)
			if err != nil {
				unauthorized(w, "invalid identity")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the caller identity stored by NewIdentityHandler.
// The second return value is false when no identity middleware ran — callers
// behind the identity group can rely on it being true.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
