package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Mondli-02/union-dues-system/internal/infra"
)

// RequestID tags every request with a correlation ID: an inbound
// X-Request-ID is honored, otherwise a fresh uuid is issued. The ID is
// echoed back to the caller and stored on the context, where the access log
// and the record-service client pick it up, so one dashboard action can be
// traced through the gateway and on to the record service.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(infra.WithRequestID(r.Context(), rid)))
	})
}
