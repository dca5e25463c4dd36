package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired sets the env vars every Load needs.
func setRequired(t *testing.T) {
	t.Setenv("CONFLUENCE_BASE", "https://wiki.example.com")
	t.Setenv("CONF_USER", "svc-sync")
	t.Setenv("CONF_PASS", "secret-token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Google.CredentialsFile != "service-account.json" {
		t.Errorf("Google.CredentialsFile = %q, want default", cfg.Google.CredentialsFile)
	}
	if cfg.Sheet.TabGID != -1 {
		t.Errorf("Sheet.TabGID = %d, want -1 (unset)", cfg.Sheet.TabGID)
	}
	if cfg.Sheet.TabName != "Curriculum" {
		t.Errorf("Sheet.TabName = %q, want %q", cfg.Sheet.TabName, "Curriculum")
	}
	if cfg.LLM.Model != "codellama:7b" {
		t.Errorf("LLM.Model = %q, want default", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 8*time.Minute {
		t.Errorf("LLM.Timeout = %v, want 8m", cfg.LLM.Timeout)
	}
	if cfg.Sync.Timeout != 10*time.Minute {
		t.Errorf("Sync.Timeout = %v, want 10m", cfg.Sync.Timeout)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SHEET_GID", "123456")
	t.Setenv("OLLAMA_TIMEOUT", "2m30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Sheet.TabGID != 123456 {
		t.Errorf("Sheet.TabGID = %d, want %d", cfg.Sheet.TabGID, 123456)
	}
	if cfg.LLM.Timeout != 150*time.Second {
		t.Errorf("LLM.Timeout = %v, want 2m30s", cfg.LLM.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("CONFLUENCE_BASE", "https://wiki.example.com")
	t.Setenv("CONF_USER", "svc-sync")
	t.Setenv("CONF_PASS", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing CONF_PASS")
	}
	if !strings.Contains(err.Error(), "CONF_PASS") {
		t.Errorf("error should name the missing variable, got %v", err)
	}
}

func TestLoad_InvalidRender(t *testing.T) {
	setRequired(t)
	t.Setenv("RENDER_OPT", "PRETTY")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for invalid RENDER_OPT")
	}
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	t.Setenv("CONFLUENCE_BASE", "wiki.example.com")
	t.Setenv("CONF_USER", "svc-sync")
	t.Setenv("CONF_PASS", "secret")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-http base URL")
	}
}

func TestString_MasksPassword(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := cfg.String()
	if strings.Contains(s, "secret-token") {
		t.Error("String() leaked the Confluence password")
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Error("String() should mark the masked password")
	}
}

func TestServerConfig_Addr(t *testing.T) {
	c := &ServerConfig{Host: "127.0.0.1", Port: 9000}
	if c.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", c.Addr())
	}

	c.Host = ""
	if c.Addr() != ":9000" {
		t.Errorf("Addr() = %q", c.Addr())
	}
}
