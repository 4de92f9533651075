package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/moneypot/moneypot/internal/ctxkeys"
)

// RequireUser resolves the caller's identity from the X-User-ID header.
// Authentication proper is out of scope; the identifier is opaque and
// caller-supplied, but it must be a well-formed UUID.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			http.Error(w, "X-User-ID header is required", http.StatusUnauthorized)
			return
		}

		if _, err := uuid.Parse(userID); err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxkeys.WithUserID(r.Context(), userID)))
	})
}
