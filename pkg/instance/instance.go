package instance

import (
	"os"

	"github.com/carwashpos/backend/pkg/env"
)

// GetID identifies this process in logs: CARWASH_INSTANCE_ID, then the
// platform dyno name, then the hostname.
func GetID() string {
	if id := env.First("CARWASH_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
