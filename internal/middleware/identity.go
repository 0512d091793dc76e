package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type userIDContextKey struct{}

var UserIDKey = userIDContextKey{}

// Identity reads the caller identity from X-User-ID. The API sits behind a
// trusted gateway that authenticates users and forwards their id; requests
// without a valid id are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			http.Error(w, `{"error":"missing X-User-ID header"}`, http.StatusUnauthorized)
			return
		}
		if _, err := uuid.Parse(userID); err != nil {
			http.Error(w, `{"error":"invalid X-User-ID header"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}
