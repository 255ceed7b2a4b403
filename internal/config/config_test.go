package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromMissingFileStartsEmpty(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.HasToken() {
		t.Error("fresh config has a token")
	}
	if got := cfg.GetServerURL(); got != DefaultServerURL {
		t.Errorf("server URL = %q, want default %q", got, DefaultServerURL)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	cfg.SetServerURL("https://chat.example.com")
	cfg.SetToken("tok-123")
	cfg.SetTheme("nord")
	cfg.SetNotificationsEnabled(true)
	cfg.SetRollbackFailedSends(true)
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom after save: %v", err)
	}
	if got := loaded.GetServerURL(); got != "https://chat.example.com" {
		t.Errorf("server URL = %q", got)
	}
	if got := loaded.GetToken(); got != "tok-123" {
		t.Errorf("token = %q", got)
	}
	if got := loaded.GetTheme(); got != "nord" {
		t.Errorf("theme = %q", got)
	}
	if !loaded.GetNotificationsEnabled() {
		t.Error("notifications flag lost")
	}
	if !loaded.GetRollbackFailedSends() {
		t.Error("rollback flag lost")
	}
}

func TestSaveUsesOwnerOnlyPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	cfg.SetToken("secret")
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestLoadFromRejectsInvalidServerURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server_url": "not a url"}`), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "invalid server URL") {
		t.Errorf("error = %v", err)
	}
}

func TestClearToken(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	cfg.SetToken("tok")
	if !cfg.HasToken() {
		t.Fatal("token not set")
	}
	cfg.ClearToken()
	if cfg.HasToken() {
		t.Error("token not cleared")
	}
}
