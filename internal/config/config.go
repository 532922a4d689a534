// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables, exactly once at
// process start; nothing in the export path reads the environment again.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes limits incoming request body sizes. Defaults to 1 MiB.
	MaxBodyBytes int64

	// WorkerURL is the base URL of the remote export worker. When set, the
	// worker backend is selected and WorkerToken is sent as a bearer token.
	WorkerURL   string
	WorkerToken string

	// AllowLocalExport permits running the export script as a local
	// subprocess. Only consulted when WorkerURL is empty.
	AllowLocalExport bool

	// ExportScript is the path of the export script run by the local
	// subprocess backend; PythonBin is the interpreter (default "python").
	ExportScript string
	PythonBin    string

	// SofficePath optionally pins the LibreOffice binary used for PDF
	// conversion; when empty, well-known locations are probed.
	// EnablePDF gates PDF conversion on the local backend entirely.
	SofficePath string
	EnablePDF   bool

	// TemplatePath is the Wochenbericht xlsx template used by the embedded
	// writer and the local subprocess, and shipped to the worker.
	TemplatePath string

	// ExportDir is where rendered artifacts are stored and served from.
	// PublicBaseURL prefixes the served /exports/ paths in responses.
	ExportDir     string
	PublicBaseURL string

	// MinYear/MaxYear bound the report years accepted by the export API.
	MinYear int
	MaxYear int
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxBodyBytes:     getEnvInt64("MAX_BODY_BYTES", 1<<20),
		WorkerURL:        strings.TrimSpace(os.Getenv("EXPORT_WORKER_URL")),
		WorkerToken:      strings.TrimSpace(os.Getenv("EXPORT_WORKER_TOKEN")),
		AllowLocalExport: getEnvBool("EXPORT_ALLOW_LOCAL", false),
		ExportScript:     getEnv("EXPORT_SCRIPT", "scripts/export_wochenbericht.py"),
		PythonBin:        getEnv("EXPORT_PYTHON_BIN", "python"),
		SofficePath:      strings.TrimSpace(os.Getenv("EXPORT_SOFFICE_PATH")),
		EnablePDF:        getEnvBool("EXPORT_ENABLE_PDF", false),
		TemplatePath:     getEnv("EXPORT_TEMPLATE_PATH", "templates/wochenbericht_template.xlsx"),
		ExportDir:        getEnv("EXPORT_DIR", "exports"),
		PublicBaseURL:    strings.TrimRight(getEnv("EXPORT_PUBLIC_BASE_URL", ""), "/"),
		MinYear:          getEnvInt("EXPORT_MIN_YEAR", 2000),
		MaxYear:          getEnvInt("EXPORT_MAX_YEAR", 2100),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if cfg.MinYear > cfg.MaxYear {
		return Config{}, fmt.Errorf("EXPORT_MIN_YEAR (%d) must not exceed EXPORT_MAX_YEAR (%d)", cfg.MinYear, cfg.MaxYear)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvBool interprets "1", "true", and "TRUE" as true, matching the
// conventions of the export worker deployment. Anything else is false.
func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v == "1" || strings.EqualFold(v, "true")
}

// getEnvInt returns the integer value of the environment variable named by
// key, or fallback when unset or malformed.
func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvInt64 is getEnvInt for int64 values (byte sizes).
func getEnvInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
