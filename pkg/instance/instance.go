package instance

import "os"

// GetID returns the process identifier reported in startup logs. Platform
// variables win over the hostname.
func GetID() string {
	for _, key := range []string{"CATALOG_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
