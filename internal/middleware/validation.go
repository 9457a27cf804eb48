package middleware

import (
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
)

const maxCallIDLength = 128

// ValidateCallID rejects websocket upgrades with a missing or malformed
// call id before the connection is accepted.
func ValidateCallID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callID := chi.URLParam(r, "call_id")
		if callID == "" || len(callID) > maxCallIDLength || !utf8.ValidString(callID) {
			http.Error(w, `{"error":"invalid call id"}`, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}
