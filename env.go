// FILE: env.go
// Package main – Environment variable helpers and .env loading.
//
// .env is loaded with godotenv rather than the hand-rolled scanner a
// day-trading sidecar setup needs: TradeSmart has no multiline PEM
// secret to dodge, so there is nothing godotenv.Load would mishandle.
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv loads ./.env into the process environment, if present.
// Existing environment variables are never overridden (godotenv's
// default behavior), so real deployment env wins over a checked-in
// .env used for local development.
func loadDotEnv() {
	_ = godotenv.Load()
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "y", "yes":
		return true
	case "0", "false", "n", "no":
		return false
	default:
		return def
	}
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList parses a comma-separated environment variable into a
// slice of trimmed, non-empty strings, falling back to def if unset.
func getEnvList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
