package marvin

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the value of the environment variable name, or
// defaultValue if it is not set.
func GetEnv(name string, defaultValue string) string {
	value, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	return value
}

// GetEnvDuration is GetEnv for time.Duration values.  Unparsable values
// fall back to defaultValue.
func GetEnvDuration(name string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// GetEnvInt is GetEnv for int values.  Unparsable values fall back to
// defaultValue.
func GetEnvInt(name string, defaultValue int) int {
	value, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
