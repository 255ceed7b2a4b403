package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// DefaultServerURL is used when no server has been configured.
const DefaultServerURL = "http://localhost:3000"

// Config holds the application configuration, including the persisted
// session token. The token lives in a single well-known slot: it is
// overwritten on login/register and cleared on logout or an unauthorized
// response.
type Config struct {
	ServerURL string `json:"server_url,omitempty"`
	Token     string `json:"token,omitempty"`

	Theme                string `json:"theme,omitempty"`                 // UI theme name (e.g., "dark-purple", "nord")
	NotificationsEnabled bool   `json:"notifications_enabled,omitempty"` // Desktop notifications for replies
	RollbackFailedSends  bool   `json:"rollback_failed_sends,omitempty"` // Remove the optimistic message when a send fails

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or creates a new one if it doesn't exist
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from a specific path. Exposed for tests.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid server URL: %q", c.ServerURL)
		}
	}
	return nil
}

// Save writes the config to disk. The file holds the session token, so it
// is written with owner-only permissions.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.filePath, data, 0600)
}

// GetServerURL returns the configured server URL, or the default if unset
func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ServerURL == "" {
		return DefaultServerURL
	}
	return c.ServerURL
}

// SetServerURL sets the server URL. Pass empty string to revert to the default.
func (c *Config) SetServerURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = u
}

// GetToken returns the persisted session token, or empty string if logged out
func (c *Config) GetToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Token
}

// SetToken overwrites the persisted session token
func (c *Config) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = token
}

// ClearToken removes the persisted session token
func (c *Config) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = ""
}

// HasToken returns whether a session token is persisted
func (c *Config) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Token != ""
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the current theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetRollbackFailedSends returns whether the optimistic user message is
// removed from the conversation when its send fails. Off by default: the
// user's own text stays visible and the failure is flagged instead.
func (c *Config) GetRollbackFailedSends() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RollbackFailedSends
}

// SetRollbackFailedSends sets the failed-send rollback policy
func (c *Config) SetRollbackFailedSends(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RollbackFailedSends = enabled
}
