package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultServerAddr is the backend address used when nothing else is set.
const DefaultServerAddr = "http://127.0.0.1:8000"

// Config holds the operator configuration
type Config struct {
	ServerAddr            string `toml:"server_addr"`
	PageSize              int    `toml:"page_size"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	ListRetrySeconds      int    `toml:"list_retry_seconds"`

	// Refresh
	RefreshTimeoutSeconds int      `toml:"refresh_timeout_seconds"`
	RefreshMaxResults     int      `toml:"refresh_max_results"`
	RefreshSources        []string `toml:"refresh_sources"`

	// Review
	RejectReasons    []string `toml:"reject_reasons"`
	KeepDecidedInAll bool     `toml:"keep_decided_in_all"`

	DebugLog string `toml:"debug_log"`

	TUI TUIConfig `toml:"tui"`
}

// TUIConfig holds display settings for the interactive reviewer
type TUIConfig struct {
	// GlamourStyle is "auto", "dark", "light" or "notty".
	GlamourStyle string `toml:"glamour_style"`
	HideEvidence bool   `toml:"hide_evidence"`
	HideScores   bool   `toml:"hide_scores"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ServerAddr:            DefaultServerAddr,
		PageSize:              20,
		RequestTimeoutSeconds: 10,
		ListRetrySeconds:      2,
		RefreshTimeoutSeconds: 60,
		RefreshMaxResults:     5,
		RefreshSources:        []string{"arxiv", "pubmed", "semanticscholar"},
		RejectReasons:         []string{"off-topic", "low-quality", "duplicate", "wrong-method", "outdated"},
		TUI: TUIConfig{
			GlamourStyle: "auto",
		},
	}
}

// DataDir returns the papertriage data directory.
// Uses PAPERTRIAGE_DATA_DIR env var if set, otherwise ~/.papertriage
func DataDir() string {
	if dir := os.Getenv("PAPERTRIAGE_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".papertriage")
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadGlobal loads the global configuration from the default path
func LoadGlobal() (*Config, error) {
	return LoadGlobalFrom(GlobalConfigPath())
}

// LoadGlobalFrom loads the global configuration from a specific path
func LoadGlobalFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the reviewer cannot run with.
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100, got %d", c.PageSize)
	}
	if c.RefreshTimeoutSeconds < 0 || c.RequestTimeoutSeconds < 0 || c.ListRetrySeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.RefreshMaxResults < 0 {
		return fmt.Errorf("refresh_max_results must not be negative, got %d", c.RefreshMaxResults)
	}
	switch c.TUI.GlamourStyle {
	case "", "auto", "dark", "light", "notty":
	default:
		return fmt.Errorf("tui.glamour_style must be auto, dark, light or notty, got %q", c.TUI.GlamourStyle)
	}
	return nil
}

// RefreshTimeout returns the refresh deadline, defaulting to 60 seconds.
func (c *Config) RefreshTimeout() time.Duration {
	if c == nil || c.RefreshTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RefreshTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-request timeout for listing and feedback.
func (c *Config) RequestTimeout() time.Duration {
	if c == nil || c.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ListRetry returns how long listings retry transient failures. Zero
// disables retrying.
func (c *Config) ListRetry() time.Duration {
	if c == nil {
		return 2 * time.Second
	}
	return time.Duration(c.ListRetrySeconds) * time.Second
}

// ResolveServerAddr determines the backend address based on priority:
// 1. Explicit flag value (if non-empty)
// 2. PAPERTRIAGE_SERVER environment variable
// 3. Global config
// 4. Default (http://127.0.0.1:8000)
// An address without a scheme gets http://.
func ResolveServerAddr(flag string, globalCfg *Config) string {
	addr := flag
	if addr == "" {
		addr = os.Getenv("PAPERTRIAGE_SERVER")
	}
	if addr == "" && globalCfg != nil {
		addr = globalCfg.ServerAddr
	}
	if addr == "" {
		addr = DefaultServerAddr
	}
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return addr
}

// SaveGlobal saves the global configuration
func SaveGlobal(cfg *Config) error {
	path := GlobalConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
