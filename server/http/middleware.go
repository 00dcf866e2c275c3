package http

import (
	"net/http"

	"github.com/google/uuid"

	internal "github.com/flowlint/flowlint/server/context"
)

// RequestID tags every request context with a fresh id so log lines from one
// request can be correlated.
func RequestID(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	ctx := internal.WithRequestID(r.Context(), uuid.New().String())
	next(rw, r.WithContext(ctx))
}
