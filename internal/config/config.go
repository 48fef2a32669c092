// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	MusicBrainz MusicBrainzConfig
	CoverArt    CoverArtConfig
	ImageHost   ImageHostConfig
	Enrichment  EnrichmentConfig
	Seed        SeedConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// DatabaseConfig holds storage configuration.
type DatabaseConfig struct {
	// Path is the SQLite database file (default: {data}/juzzt.db).
	Path string
	// DataPath is the base directory for all persistent data:
	// database, metadata cache, search index, uploaded images.
	DataPath string
	// CachePath is the directory for the metadata lookup cache (default: {data}/cache).
	CachePath string
	// SearchIndexPath is the directory for the search index (default: {data}/search.bleve).
	SearchIndexPath string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey []byte
	// Session durations
	AccessTokenDuration  time.Duration // e.g., 15m
	RefreshTokenDuration time.Duration // e.g., 720h (30 days)
}

// MusicBrainzConfig holds MusicBrainz API configuration.
type MusicBrainzConfig struct {
	// BaseURL overrides the API endpoint, mainly for tests (default: https://musicbrainz.org/ws/2)
	BaseURL string
	// UserAgent is sent on every request; MusicBrainz requires an identifying one.
	UserAgent string
	// RequestsPerSecond caps the request rate (MusicBrainz allows 1 req/s for anonymous clients).
	RequestsPerSecond float64
}

// CoverArtConfig holds Cover Art Archive configuration.
type CoverArtConfig struct {
	// BaseURL overrides the API endpoint, mainly for tests (default: https://coverartarchive.org)
	BaseURL string
}

// ImageHostConfig holds image hosting configuration for cover uploads.
type ImageHostConfig struct {
	// UploadURL is the endpoint that accepts multipart image uploads.
	// When empty, local uploads are stored under {data}/images and served by this server.
	UploadURL string
	// APIKey authenticates against the upload endpoint (optional).
	APIKey string
	// LocalPath is the directory for locally stored images (default: {data}/images).
	LocalPath string
}

// EnrichmentConfig holds metadata enrichment configuration.
type EnrichmentConfig struct {
	// DropPath is a watched directory; image files named {recordID}.jpg dropped
	// there are uploaded and attached to the record (default: {data}/covers-in).
	DropPath string
	// Interval is how often the background enrichment run fires (default: 24h).
	// Zero disables the background worker; the admin endpoint and cmd/enrich still work.
	Interval time.Duration
}

// SeedConfig holds catalog seeding configuration.
type SeedConfig struct {
	// RecordsFile is a JSON file of records loaded by the seed command (default: seed/records.json).
	RecordsFile string
	// AdminEmail and AdminPassword create an initial admin account when both are set.
	AdminEmail    string
	AdminPassword string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for persistent data")
	dbPath := flag.String("db-path", "", "Path to the SQLite database file")
	serverName := flag.String("server-name", "", "Name for the server")

	// Auth flags
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Enrichment flags
	dropPath := flag.String("covers-drop-path", "", "Watched directory for incoming cover images")
	enrichInterval := flag.String("enrich-interval", "", "Background enrichment interval, 0 disables (default: 24h)")

	// Seed flags
	recordsFile := flag.String("records-file", "", "JSON file of records for the seed command")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},

		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "Juzzt Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},

		Database: DatabaseConfig{
			DataPath:        getConfigValue(*dataPath, "DATA_PATH", ""),
			Path:            getConfigValue(*dbPath, "DB_PATH", ""),
			CachePath:       getConfigValue("", "CACHE_PATH", ""),
			SearchIndexPath: getConfigValue("", "SEARCH_INDEX_PATH", ""),
		},

		Auth: AuthConfig{
			AccessTokenKey: nil, // Will be set by auth.LoadOrGenerateKey in main
		},

		MusicBrainz: MusicBrainzConfig{
			BaseURL:           getConfigValue("", "MUSICBRAINZ_BASE_URL", "https://musicbrainz.org/ws/2"),
			UserAgent:         getConfigValue("", "MUSICBRAINZ_USER_AGENT", "juzzt-server/1.0 (https://github.com/juzzt/juzzt-server)"),
			RequestsPerSecond: getFloatConfigValue("", "MUSICBRAINZ_RPS", 1.0),
		},

		CoverArt: CoverArtConfig{
			BaseURL: getConfigValue("", "COVERART_BASE_URL", "https://coverartarchive.org"),
		},

		ImageHost: ImageHostConfig{
			UploadURL: getConfigValue("", "IMAGE_UPLOAD_URL", ""),
			APIKey:    getConfigValue("", "IMAGE_API_KEY", ""),
			LocalPath: getConfigValue("", "IMAGE_LOCAL_PATH", ""),
		},

		Enrichment: EnrichmentConfig{
			DropPath: getConfigValue(*dropPath, "COVERS_DROP_PATH", ""),
		},

		Seed: SeedConfig{
			RecordsFile:   getConfigValue(*recordsFile, "SEED_RECORDS_FILE", "seed/records.json"),
			AdminEmail:    getConfigValue("", "SEED_ADMIN_EMAIL", ""),
			AdminPassword: getConfigValue("", "SEED_ADMIN_PASSWORD", ""),
		},
	}

	// Parse auth durations.
	accessDurationStr := getConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m")
	accessDuration, err := time.ParseDuration(accessDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access token duration %q: %w", accessDurationStr, err)
	}
	cfg.Auth.AccessTokenDuration = accessDuration

	refreshDurationStr := getConfigValue(*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h")
	refreshDuration, err := time.ParseDuration(refreshDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token duration %q: %w", refreshDurationStr, err)
	}
	cfg.Auth.RefreshTokenDuration = refreshDuration

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	// Parse enrichment interval.
	enrichIntervalStr := getConfigValue(*enrichInterval, "ENRICH_INTERVAL", "24h")
	enrichIntervalDuration, err := time.ParseDuration(enrichIntervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid enrichment interval %q: %w", enrichIntervalStr, err)
	}
	cfg.Enrichment.Interval = enrichIntervalDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Expand and validate data paths.
	if err := cfg.expandDataPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
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

	if c.Database.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.MusicBrainz.RequestsPerSecond <= 0 {
		return fmt.Errorf("invalid MusicBrainz request rate: %g", c.MusicBrainz.RequestsPerSecond)
	}

	if c.Enrichment.Interval < 0 {
		return fmt.Errorf("invalid enrichment interval: %s", c.Enrichment.Interval)
	}

	// Auth durations are validated during LoadConfig parsing.
	// Auth key is set by auth.LoadOrGenerateKey in main.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPaths expands the base data path and derives the per-concern
// paths from it when they were not set explicitly.
func (c *Config) expandDataPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultData := filepath.Join(homeDir, "Juzzt", "data")

	expanded, err := expandPath(c.Database.DataPath, defaultData)
	if err != nil {
		return err
	}
	c.Database.DataPath = expanded

	if c.Database.Path, err = expandPath(c.Database.Path, filepath.Join(expanded, "juzzt.db")); err != nil {
		return err
	}
	if c.Database.CachePath, err = expandPath(c.Database.CachePath, filepath.Join(expanded, "cache")); err != nil {
		return err
	}
	if c.Database.SearchIndexPath, err = expandPath(c.Database.SearchIndexPath, filepath.Join(expanded, "search.bleve")); err != nil {
		return err
	}
	if c.ImageHost.LocalPath, err = expandPath(c.ImageHost.LocalPath, filepath.Join(expanded, "images")); err != nil {
		return err
	}
	if c.Enrichment.DropPath, err = expandPath(c.Enrichment.DropPath, filepath.Join(expanded, "covers-in")); err != nil {
		return err
	}

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
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

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
