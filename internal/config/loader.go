package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		value := os.Getenv(envName)

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Confluence validation
	if !strings.HasPrefix(c.Confluence.Base, "http://") && !strings.HasPrefix(c.Confluence.Base, "https://") {
		errs = append(errs, fmt.Sprintf("CONFLUENCE_BASE (%q) must be an http(s) URL", c.Confluence.Base))
	}
	if c.Confluence.Timeout <= 0 {
		errs = append(errs, "CONFLUENCE_TIMEOUT must be positive")
	}

	// Sheet validation
	validRender := map[string]bool{
		"FORMATTED_VALUE":   true,
		"UNFORMATTED_VALUE": true,
		"FORMULA":           true,
	}
	if !validRender[c.Sheet.Render] {
		errs = append(errs, fmt.Sprintf("RENDER_OPT (%q) must be one of: FORMATTED_VALUE, UNFORMATTED_VALUE, FORMULA", c.Sheet.Render))
	}

	// LLM validation
	if c.LLM.URL == "" {
		errs = append(errs, "OLLAMA_API_URL must not be empty")
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, "OLLAMA_TIMEOUT must be positive")
	}

	// Sync validation
	if c.Sync.Timeout <= 0 {
		errs = append(errs, "SYNC_TIMEOUT must be positive")
	}
	validKinds := map[string]bool{
		"sheet_values":   true,
		"drive_export":   true,
		"drive_download": true,
		"drive_list":     true,
	}
	if !validKinds[c.Sync.SourceKind] {
		errs = append(errs, fmt.Sprintf("SOURCE_KIND (%q) must be one of: sheet_values, drive_export, drive_download, drive_list", c.Sync.SourceKind))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Confluence: {Base: %q, User: %q, Pass: [MASKED], ParentPageID: %q}, ",
		c.Confluence.Base, c.Confluence.User, c.Confluence.ParentPageID))
	b.WriteString(fmt.Sprintf("Google: {CredentialsFile: %q}, ", c.Google.CredentialsFile))
	b.WriteString(fmt.Sprintf("Sheet: {SpreadsheetID: %q, TabGID: %d, TabName: %q}, ",
		c.Sheet.SpreadsheetID, c.Sheet.TabGID, c.Sheet.TabName))
	b.WriteString(fmt.Sprintf("LLM: {URL: %q, Model: %q}, ", c.LLM.URL, c.LLM.Model))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
