// Package config loads service configuration from defaults, an optional TOML
// file, and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/LooWze/LooWzeIA/internal/ocr"
)

const (
	EngineGosseract = "gosseract"
	EngineCLI       = "cli"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	developmentSecret = "development-only-secret"
)

// Server contains HTTP listener settings.
type Server struct {
	Port               int      `toml:"port"`
	Environment        string   `toml:"environment"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// Database contains the sqlite location.
type Database struct {
	Path string `toml:"path"`
}

// Storage contains where uploaded faces are written.
type Storage struct {
	UploadsDir string `toml:"uploads_dir"`
}

// Catalog contains Pokemon TCG API settings.
type Catalog struct {
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"api_key"`
	TimeoutSeconds float64 `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
}

// OCR selects and configures the text recognition engine.
type OCR struct {
	Engine        string   `toml:"engine"`
	Languages     []string `toml:"languages"`
	TesseractPath string   `toml:"tesseract_path"`
}

// Auth contains token signing settings.
type Auth struct {
	JWTSecret     string  `toml:"jwt_secret"`
	TokenTTLHours float64 `toml:"token_ttl_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for the card scan service.
type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Storage  Storage  `toml:"storage"`
	Catalog  Catalog  `toml:"catalog"`
	OCR      OCR      `toml:"ocr"`
	Auth     Auth     `toml:"auth"`
	Logging  Logging  `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Port:               8080,
			Environment:        EnvDevelopment,
			CORSAllowedOrigins: []string{"http://localhost:5173", "https://loo-wze-ia.vercel.app"},
		},
		Database: Database{Path: "./cardscan.db"},
		Storage:  Storage{UploadsDir: "./data/uploads"},
		Catalog: Catalog{
			BaseURL:        "https://api.pokemontcg.io/v2",
			TimeoutSeconds: 5,
			RateLimit:      5,
		},
		OCR: OCR{
			Engine:    EngineGosseract,
			Languages: append([]string(nil), ocr.DefaultLanguages...),
		},
		Auth:    Auth{TokenTTLHours: 24},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path, or CONFIG_FILE when path is empty,
// names an optional TOML file; a named file that does not exist is an error.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	setString("APP_ENV", &c.Server.Environment)
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = splitList(v)
	}

	setString("DB_PATH", &c.Database.Path)
	setString("UPLOADS_DIR", &c.Storage.UploadsDir)

	setString("POKEMON_TCG_BASE_URL", &c.Catalog.BaseURL)
	setString("POKEMON_TCG_API_KEY", &c.Catalog.APIKey)
	if v, ok := os.LookupEnv("CATALOG_TIMEOUT"); ok {
		d, err := parseDuration(v, time.Second)
		if err != nil {
			return fmt.Errorf("CATALOG_TIMEOUT: %w", err)
		}
		c.Catalog.TimeoutSeconds = d.Seconds()
	}
	if v, ok := os.LookupEnv("CATALOG_RATE_LIMIT"); ok {
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("CATALOG_RATE_LIMIT: %w", err)
		}
		c.Catalog.RateLimit = rate
	}

	setString("OCR_ENGINE", &c.OCR.Engine)
	if v, ok := os.LookupEnv("OCR_LANGUAGES"); ok {
		c.OCR.Languages = splitList(v)
	}
	setString("TESSERACT_PATH", &c.OCR.TesseractPath)

	setString("JWT_SECRET", &c.Auth.JWTSecret)
	if v, ok := os.LookupEnv("JWT_TTL"); ok {
		d, err := parseDuration(v, time.Hour)
		if err != nil {
			return fmt.Errorf("JWT_TTL: %w", err)
		}
		c.Auth.TokenTTLHours = d.Hours()
	}

	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FORMAT", &c.Logging.Format)
	return nil
}

func (c *Config) normalize() error {
	c.Server.Environment = strings.ToLower(strings.TrimSpace(c.Server.Environment))
	if c.Server.Environment == "" {
		c.Server.Environment = EnvDevelopment
	}
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))

	langs, err := ocr.ParseLanguages(strings.Join(c.OCR.Languages, ","))
	if err != nil {
		return fmt.Errorf("ocr.languages: %w", err)
	}
	c.OCR.Languages = langs

	if c.Auth.JWTSecret == "" && c.IsDevelopment() {
		c.Auth.JWTSecret = developmentSecret
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.OCR.Engine {
	case EngineGosseract, EngineCLI:
	default:
		return fmt.Errorf("ocr.engine: unsupported value %q (want %q or %q)", c.OCR.Engine, EngineGosseract, EngineCLI)
	}
	if len(c.OCR.Languages) == 0 {
		return errors.New("ocr.languages must list at least one language")
	}
	if c.Catalog.BaseURL == "" {
		return errors.New("catalog.base_url must be set")
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		return errors.New("catalog.timeout_seconds must be positive")
	}
	if c.Catalog.RateLimit < 0 {
		return errors.New("catalog.rate_limit must not be negative")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return errors.New("auth.token_ttl_hours must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required outside development. Set JWT_SECRET")
	}
	if c.Database.Path == "" {
		return errors.New("database.path must be set")
	}
	if c.Storage.UploadsDir == "" {
		return errors.New("storage.uploads_dir must be set")
	}
	return nil
}

// IsDevelopment reports whether insecure defaults are acceptable.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// UsesDevelopmentSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsesDevelopmentSecret() bool {
	return c.Auth.JWTSecret == developmentSecret
}

func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds * float64(time.Second))
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours * float64(time.Hour))
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDuration accepts a Go duration ("1500ms") or a bare number in unit.
func parseDuration(v string, unit time.Duration) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(n * float64(unit)), nil
	}
	return time.ParseDuration(v)
}
