// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
// Components receive ready-made sub-structures and never consult the
// environment themselves.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Confluence ConfluenceConfig
	Google     GoogleConfig
	Sheet      SheetConfig
	LLM        LLMConfig
	Sync       SyncConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings for the service surface.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0,
	// disabled: a /sync response waits on a whole sync job)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// ConfluenceConfig holds the wiki backend credentials and target.
type ConfluenceConfig struct {
	// Base is the Confluence base URL, e.g. "https://confluence.example.com"
	Base string `env:"CONFLUENCE_BASE" required:"true"`

	// User is the Confluence username or email
	User string `env:"CONF_USER" required:"true"`

	// Pass is the Confluence password or personal access token
	Pass string `env:"CONF_PASS" required:"true"`

	// ParentPageID is the parent page generated lessons are created under.
	// Required by the generate command, unused by attachment sync.
	ParentPageID string `env:"PARENT_PAGE_ID"`

	// Timeout bounds each wiki request (default: 30s)
	Timeout time.Duration `env:"CONFLUENCE_TIMEOUT" default:"30s"`

	// InsecureSkipVerify disables certificate verification for the wiki
	// client only, for instances behind internal certificates
	InsecureSkipVerify bool `env:"CONFLUENCE_INSECURE_SKIP_VERIFY" default:"false"`
}

// GoogleConfig holds the service-account credential for Sheets and Drive.
type GoogleConfig struct {
	// CredentialsFile is the path to the service-account JSON key. Share
	// the target Sheet/Folder/File with the service-account email.
	CredentialsFile string `env:"GOOGLE_SA_JSON" default:"service-account.json"`
}

// SheetConfig identifies the default source tab used by the generate command
// and the read-only query endpoints.
type SheetConfig struct {
	// SpreadsheetID is the Google Spreadsheet ID
	SpreadsheetID string `env:"SPREADSHEET_ID"`

	// TabGID selects a tab by stable numeric id (-1: unset, select by name)
	TabGID int64 `env:"SHEET_GID" default:"-1"`

	// TabName selects a tab by display name (default: Curriculum)
	TabName string `env:"SHEET_TAB_NAME" default:"Curriculum"`

	// Render is the value render option passed to the Sheets API
	Render string `env:"RENDER_OPT" default:"FORMATTED_VALUE"`
}

// LLMConfig holds the text-generation backend settings.
type LLMConfig struct {
	// URL is the generate endpoint, e.g. "http://localhost:11434/api/generate"
	URL string `env:"OLLAMA_API_URL" default:"http://localhost:11434/api/generate"`

	// Model is the model tag passed with every request
	Model string `env:"OLLAMA_MODEL" default:"codellama:7b"`

	// Timeout bounds a single generation call (default: 8m; model inference
	// on shared hardware is slow)
	Timeout time.Duration `env:"OLLAMA_TIMEOUT" default:"8m"`

	// InsecureSkipVerify disables certificate verification for the
	// generation client only
	InsecureSkipVerify bool `env:"OLLAMA_INSECURE_SKIP_VERIFY" default:"false"`
}

// SyncConfig holds the default attachment sync job for the service surface.
// A /sync request may override the source kind, filename and tab reference;
// everything else comes from here.
type SyncConfig struct {
	// Timeout is the wall-clock deadline for one /sync job (default: 10m).
	// A job that exceeds it is reported as a timeout failure; writes
	// already committed to the wiki are not rolled back.
	Timeout time.Duration `env:"SYNC_TIMEOUT" default:"10m"`

	// PageID is the Confluence page that receives the attachment
	PageID string `env:"PAGE_ID"`

	// SourceKind selects where payload bytes come from:
	// sheet_values, drive_export, drive_download or drive_list
	SourceKind string `env:"SOURCE_KIND" default:"sheet_values"`

	// Filename is the attachment filename to create or update
	Filename string `env:"ATTACHMENT_FILENAME"`

	// DriveFileID is the Drive file for drive_export / drive_download
	DriveFileID string `env:"DRIVE_FILE_ID"`

	// DriveFolderID is the Drive folder for drive_list
	DriveFolderID string `env:"DRIVE_FOLDER_ID"`

	// DriveQuery is an extra Drive query ANDed with the folder filter
	DriveQuery string `env:"DRIVE_QUERY"`

	// ExportMIME is the export target type for drive_export (default: text/csv)
	ExportMIME string `env:"EXPORT_MIME" default:"text/csv"`

	// WriteBackRange is an optional A1 range receiving a status line
	WriteBackRange string `env:"WRITE_BACK_RANGE"`

	// WriteBackTemplate formats the status line; supports {timestamp},
	// {filename} and {status} placeholders
	WriteBackTemplate string `env:"WRITE_BACK_TEMPLATE"`

	// AppendLogRange is an optional A1 range receiving appended
	// [timestamp, filename, status] rows
	AppendLogRange string `env:"APPEND_LOG_RANGE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
