package util

import (
	"os"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env from the working directory. Variables already set in
// the process environment win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("[Env] No .env file found, using process environment")
	}
}

// lookup returns the trimmed value of key; blank values count as unset.
func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func GetEnv(key string) string {
	value, _ := lookup(key)
	return value
}

func GetEnvString(key string, defaultValue string) string {
	if value, ok := lookup(key); ok {
		return value
	}
	return defaultValue
}

// GetEnvNumeric parses key as a float. Unparsable values fall back to
// defaultValue with a warning.
func GetEnvNumeric(key string, defaultValue int) float64 {
	value, ok := lookup(key)
	if !ok {
		return float64(defaultValue)
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warn("[Env] Ignoring invalid number", "key", key, "value", value)
		return float64(defaultValue)
	}
	return n
}

func GetEnvInt(key string, defaultValue int) int {
	return int(GetEnvNumeric(key, defaultValue))
}

// GetEnvBool accepts the spellings of strconv.ParseBool.
func GetEnvBool(key string, defaultValue bool) bool {
	value, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logger.Warn("[Env] Ignoring invalid boolean", "key", key, "value", value)
		return defaultValue
	}
	return b
}

// GetEnvList splits a comma separated variable and drops empty entries.
func GetEnvList(key string, defaultValue []string) []string {
	value, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
