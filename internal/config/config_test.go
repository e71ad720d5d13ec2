package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "APP_ENV", "CORS_ALLOWED_ORIGINS", "DB_PATH", "UPLOADS_DIR",
		"POKEMON_TCG_BASE_URL", "POKEMON_TCG_API_KEY", "CATALOG_TIMEOUT", "CATALOG_RATE_LIMIT",
		"OCR_ENGINE", "OCR_LANGUAGES", "TESSERACT_PATH", "JWT_SECRET", "JWT_TTL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardscan.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 || cfg.Addr() != ":8080" {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.CatalogTimeout() != 5*time.Second {
		t.Errorf("Expected 5s catalog timeout, got %v", cfg.CatalogTimeout())
	}
	if cfg.TokenTTL() != 24*time.Hour {
		t.Errorf("Expected 24h token TTL, got %v", cfg.TokenTTL())
	}
	if cfg.OCR.Engine != EngineGosseract {
		t.Errorf("Expected gosseract engine, got %s", cfg.OCR.Engine)
	}
	if !reflect.DeepEqual(cfg.OCR.Languages, []string{"en", "fr", "de", "es", "it"}) {
		t.Errorf("Unexpected default languages: %v", cfg.OCR.Languages)
	}
	if !cfg.IsDevelopment() || !cfg.UsesDevelopmentSecret() {
		t.Error("Expected development defaults with built-in secret")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[server]
port = 9090
cors_allowed_origins = ["https://cards.example.com"]

[catalog]
api_key = "file-key"
timeout_seconds = 2.5

[ocr]
engine = "CLI"
languages = ["fr", "de-AT"]

[logging]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if !reflect.DeepEqual(cfg.Server.CORSAllowedOrigins, []string{"https://cards.example.com"}) {
		t.Errorf("Unexpected CORS origins: %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Catalog.APIKey != "file-key" || cfg.CatalogTimeout() != 2500*time.Millisecond {
		t.Errorf("Unexpected catalog settings: %+v", cfg.Catalog)
	}
	if cfg.Catalog.BaseURL != "https://api.pokemontcg.io/v2" {
		t.Errorf("Expected default base URL to survive partial file, got %s", cfg.Catalog.BaseURL)
	}
	if cfg.OCR.Engine != EngineCLI {
		t.Errorf("Expected engine normalized to cli, got %s", cfg.OCR.Engine)
	}
	if !reflect.DeepEqual(cfg.OCR.Languages, []string{"fr", "de"}) {
		t.Errorf("Expected normalized languages, got %v", cfg.OCR.Languages)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("Unexpected logging settings: %+v", cfg.Logging)
	}
}

func TestLoadFileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, "[server]\nport = 7070\n"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected port from CONFIG_FILE, got %d", cfg.Server.Port)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[server]\nport = 9090\n[catalog]\napi_key = \"file-key\"\n")

	t.Setenv("PORT", "3000")
	t.Setenv("POKEMON_TCG_API_KEY", "env-key")
	t.Setenv("POKEMON_TCG_BASE_URL", "http://localhost:9999/v2/")
	t.Setenv("CATALOG_TIMEOUT", "750ms")
	t.Setenv("CATALOG_RATE_LIMIT", "0")
	t.Setenv("OCR_LANGUAGES", "en, it")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_TTL", "2")
	t.Setenv("DB_PATH", "/tmp/cards.db")
	t.Setenv("UPLOADS_DIR", "/tmp/uploads")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Expected PORT override, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.APIKey != "env-key" {
		t.Errorf("Expected API key override, got %s", cfg.Catalog.APIKey)
	}
	if cfg.Catalog.BaseURL != "http://localhost:9999/v2" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.Catalog.BaseURL)
	}
	if cfg.CatalogTimeout() != 750*time.Millisecond {
		t.Errorf("Expected 750ms timeout, got %v", cfg.CatalogTimeout())
	}
	if cfg.Catalog.RateLimit != 0 {
		t.Errorf("Expected rate limit disabled, got %v", cfg.Catalog.RateLimit)
	}
	if !reflect.DeepEqual(cfg.OCR.Languages, []string{"en", "it"}) {
		t.Errorf("Unexpected languages: %v", cfg.OCR.Languages)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.TokenTTL() != 2*time.Hour {
		t.Errorf("Expected 2h TTL, got %v", cfg.TokenTTL())
	}
	if cfg.Database.Path != "/tmp/cards.db" || cfg.Storage.UploadsDir != "/tmp/uploads" {
		t.Errorf("Unexpected paths: %s %s", cfg.Database.Path, cfg.Storage.UploadsDir)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{"Missing named file", nil, "", "read config"},
		{"Bad TOML", nil, "[server\nport=", "parse config"},
		{"Bad port", map[string]string{"PORT": "http"}, "-", "PORT"},
		{"Port out of range", map[string]string{"PORT": "70000"}, "-", "server.port"},
		{"Unknown engine", map[string]string{"OCR_ENGINE": "easyocr"}, "-", "ocr.engine"},
		{"Bad language", map[string]string{"OCR_LANGUAGES": "en,not a language"}, "-", "ocr.languages"},
		{"No languages", map[string]string{"OCR_LANGUAGES": " , "}, "-", "ocr.languages"},
		{"Zero timeout", map[string]string{"CATALOG_TIMEOUT": "0"}, "-", "timeout"},
		{"Bad timeout", map[string]string{"CATALOG_TIMEOUT": "soon"}, "-", "CATALOG_TIMEOUT"},
		{"Production without secret", map[string]string{"APP_ENV": "production"}, "-", "jwt_secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			switch tt.file {
			case "":
				path = filepath.Join(t.TempDir(), "missing.toml")
			case "-":
			default:
				path = writeConfig(t, tt.file)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadProductionWithSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "Production")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.IsDevelopment() || cfg.UsesDevelopmentSecret() {
		t.Error("Expected production settings")
	}
}
