package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return "8080"
	}
	return port
}

func Addr() string {
	return ":" + Port()
}

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

// CorsOrigins reads the comma separated CORS_ORIGINS list. An empty list
// allows every origin.
func CorsOrigins() []string {
	value, ok := os.LookupEnv("CORS_ORIGINS")
	if !ok {
		return nil
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func requireEnv(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("no %s env variable set", name)
	}
	return value, nil
}

// lookupInt returns fallback when name is unset.
func lookupInt(name string, fallback int) (int, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %s: %w", name, err)
	}
	return n, nil
}
