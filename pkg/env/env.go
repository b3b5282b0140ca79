// Package env reads the few process variables that live outside the AUTOPARTS_
// config namespace, such as the platform-assigned PORT and LOG_FORMAT.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// OneOf returns the value of key lower-cased when it matches one of allowed,
// and fallback otherwise.
func OneOf(key, fallback string, allowed ...string) string {
	val := strings.ToLower(Get(key, ""))
	for _, candidate := range allowed {
		if val == candidate {
			return val
		}
	}
	return fallback
}
