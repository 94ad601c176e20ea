package utils

import "os"

// GetEnv returns the value of an environment variable, falling back to a
// default when the variable is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
