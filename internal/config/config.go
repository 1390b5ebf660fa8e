// Package config loads server configuration from flags, environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Server   ServerConfig
	Metadata MetadataConfig
	Search   SearchConfig
	Library  LibraryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds on-disk storage configuration.
type StorageConfig struct {
	// DataPath holds the preferences database. Empty means in-memory.
	DataPath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 60s, covers enrichment chains)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins for the web front end
}

// MetadataConfig holds external book metadata settings.
type MetadataConfig struct {
	// RelayURL, when set, prefixes every upstream URL (url-encoded).
	RelayURL        string
	OpenLibraryURL  string
	CoversURL       string
	GoogleBooksURL  string
	Timeout         time.Duration
	ComputeBlurHash bool
}

// SearchConfig holds search box settings.
type SearchConfig struct {
	Debounce time.Duration
	Limit    int
	// SessionTTL closes search sessions left untouched this long; 0 keeps them.
	SessionTTL time.Duration
}

// LibraryConfig holds catalogue settings.
type LibraryConfig struct {
	DefaultTheme string
	SeedSamples  bool
}

// Defaults.
const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	DefaultCoversURL      = "https://covers.openlibrary.org"
	DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1"
)

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the preferences database (empty: in-memory)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	origins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins")

	relayURL := fs.String("metadata-relay", "", "Relay URL prefix for upstream metadata requests")
	openLibraryURL := fs.String("openlibrary-url", "", "OpenLibrary base URL")
	coversURL := fs.String("openlibrary-covers-url", "", "OpenLibrary covers base URL")
	googleBooksURL := fs.String("google-books-url", "", "Google Books API base URL")
	metadataTimeout := fs.String("metadata-timeout", "", "Upstream request timeout (default: 10s)")
	blurHash := fs.String("cover-blurhash", "", "Compute cover BlurHash placeholders (default: true)")

	debounce := fs.String("search-debounce", "", "Search box debounce delay (default: 300ms)")
	searchLimit := fs.String("search-limit", "", "Search box result count (default: 5)")
	sessionTTL := fs.String("search-session-ttl", "", "Close idle search sessions after this long (default: 30m)")

	defaultTheme := fs.String("default-theme", "", "Theme when none is saved (light, dark)")
	seed := fs.String("seed-sample-books", "", "Add the sample books at startup (default: false)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*origins, "CORS_ALLOWED_ORIGINS", "")),
		},
		Metadata: MetadataConfig{
			RelayURL:        getConfigValue(*relayURL, "METADATA_RELAY_URL", ""),
			OpenLibraryURL:  strings.TrimRight(getConfigValue(*openLibraryURL, "OPENLIBRARY_URL", DefaultOpenLibraryURL), "/"),
			CoversURL:       strings.TrimRight(getConfigValue(*coversURL, "OPENLIBRARY_COVERS_URL", DefaultCoversURL), "/"),
			GoogleBooksURL:  strings.TrimRight(getConfigValue(*googleBooksURL, "GOOGLE_BOOKS_URL", DefaultGoogleBooksURL), "/"),
			ComputeBlurHash: getBoolConfigValue(*blurHash, "COVER_BLURHASH", true),
		},
		Library: LibraryConfig{
			DefaultTheme: strings.ToLower(getConfigValue(*defaultTheme, "DEFAULT_THEME", "light")),
			SeedSamples:  getBoolConfigValue(*seed, "SEED_SAMPLE_BOOKS", false),
		},
	}

	var err error
	if cfg.Search.Limit, err = getIntConfigValue(*searchLimit, "SEARCH_LIMIT", 5); err != nil {
		return nil, err
	}

	durations := []struct {
		target   *time.Duration
		flag     string
		envKey   string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Metadata.Timeout, *metadataTimeout, "METADATA_TIMEOUT", "10s"},
		{&cfg.Search.Debounce, *debounce, "SEARCH_DEBOUNCE", "300ms"},
		{&cfg.Search.SessionTTL, *sessionTTL, "SEARCH_SESSION_TTL", "30m"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.target = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Library.DefaultTheme != "light" && c.Library.DefaultTheme != "dark" {
		return fmt.Errorf("invalid default theme: %s (must be light or dark)", c.Library.DefaultTheme)
	}

	for name, raw := range map[string]string{
		"OPENLIBRARY_URL":        c.Metadata.OpenLibraryURL,
		"OPENLIBRARY_COVERS_URL": c.Metadata.CoversURL,
		"GOOGLE_BOOKS_URL":       c.Metadata.GoogleBooksURL,
		"METADATA_RELAY_URL":     c.Metadata.RelayURL,
	} {
		if raw == "" && name == "METADATA_RELAY_URL" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}

	if c.Metadata.Timeout <= 0 {
		return errors.New("metadata timeout must be positive")
	}
	if c.Search.Debounce < 0 {
		return errors.New("search debounce cannot be negative")
	}
	if c.Search.SessionTTL < 0 {
		return errors.New("search session ttl cannot be negative")
	}
	if c.Search.Limit < 1 {
		return fmt.Errorf("search limit must be at least 1, got %d", c.Search.Limit)
	}

	return nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
// An empty path stays empty and keeps preferences in memory.
func (c *Config) expandDataPath() error {
	expanded, err := expandPath(c.Storage.DataPath, "")
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
