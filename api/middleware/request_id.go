package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/carwashpos/backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Client ids are echoed back in headers and logs, so only short tokens pass.
var clientRequestIDRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequestID tags every request with an id, reusing a well-formed
// X-Request-Id from the till and minting a UUID otherwise.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if !clientRequestIDRe.MatchString(id) {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
