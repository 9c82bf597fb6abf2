package config

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSettings = errors.New("invalid server settings")

// Settings is the runtime configuration of the game server
type Settings struct {
	// Game listener; HTTPAddr is optional and serves the operations API
	ListenAddr string `json:"listen_addr" validate:"required,hostname_port"`
	HTTPAddr   string `json:"http_addr" validate:"omitempty,hostname_port"`

	MaxMatches   int `json:"max_matches" validate:"min=1,max=1024"`
	WriteQueue   int `json:"write_queue" validate:"min=1,max=4096"`
	MaxLineBytes int `json:"max_line_bytes" validate:"min=64,max=65536"`

	Catalog    string `json:"catalog" validate:"required"`
	// CatalogDir adds catalogs from disk. The default is skipped when missing.
	CatalogDir string `json:"catalog_dir"`

	// ResultsDB is a SQLite file path; empty keeps results in memory
	ResultsDB string `json:"results_db"`

	CleanupInterval time.Duration `json:"cleanup_interval" validate:"gt=0"`
	RetainFinished  time.Duration `json:"retain_finished" validate:"gte=0"`

	Ngrok NgrokSettings `json:"ngrok"`
}

// NgrokSettings configures the optional public TCP tunnel
type NgrokSettings struct {
	Enabled   bool   `json:"enabled"`
	AuthToken string `json:"-" validate:"required_if=Enabled true"`
	// RemoteAddr is a reserved ngrok TCP address such as 1.tcp.ngrok.io:20000
	RemoteAddr string `json:"remote_addr" validate:"omitempty,hostname_port"`
}

// DefaultSettings returns the settings used when no flag overrides them
func DefaultSettings() Settings {
	return Settings{
		ListenAddr:      "127.0.0.1:8080",
		MaxMatches:      1,
		WriteQueue:      64,
		MaxLineBytes:    1024,
		Catalog:         DefaultCatalog,
		CatalogDir:      "configs",
		CleanupInterval: time.Minute,
		RetainFinished:  10 * time.Minute,
	}
}

// Validate checks the settings for consistency
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}
