package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/config"
)

func newStore(t *testing.T, serverURL string) (*Store, *config.Config) {
	t.Helper()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	store := NewStore(cfg)
	client := api.New(serverURL, store)
	store.AttachClient(client)
	return store, cfg
}

func TestResolveWithoutTokenStaysLoggedOut(t *testing.T) {
	// No server: resolution must not issue a network call
	store, _ := newStore(t, "http://127.0.0.1:1")

	if err := store.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("authenticated without a token")
	}
	if store.IsLoading() {
		t.Error("loading flag not cleared")
	}
}

func TestResolveValidTokenInstallsUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer persisted" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": api.User{ID: "u1", Username: "mira"}})
	}))
	defer srv.Close()

	store, cfg := newStore(t, srv.URL)
	cfg.SetToken("persisted")

	if err := store.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	user := store.User()
	if user == nil || user.Username != "mira" {
		t.Fatalf("user = %+v", user)
	}
}

func TestResolveRejectedTokenDiscarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store, cfg := newStore(t, srv.URL)
	cfg.SetToken("stale")

	if err := store.Resolve(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if cfg.HasToken() {
		t.Error("rejected token not discarded")
	}
	if store.IsAuthenticated() {
		t.Error("authenticated after rejection")
	}
	if store.IsLoading() {
		t.Error("loading flag not cleared")
	}
}

func TestLoginPersistsTokenAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != "m@example.com" || req["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Login failed"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": api.Session{
			Token: "fresh-token",
			User:  api.User{ID: "u1", Username: "mira"},
		}})
	}))
	defer srv.Close()

	store, cfg := newStore(t, srv.URL)

	if err := store.Login(context.Background(), "m@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := cfg.GetToken(); got != "fresh-token" {
		t.Errorf("token = %q, want %q", got, "fresh-token")
	}
	if user := store.User(); user == nil || user.Username != "mira" {
		t.Errorf("user = %+v", store.User())
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Login failed"})
	}))
	defer srv.Close()

	store, cfg := newStore(t, srv.URL)

	if err := store.Login(context.Background(), "m@example.com", "wrong"); err == nil {
		t.Fatal("expected an error")
	}
	if cfg.HasToken() {
		t.Error("failed login persisted a token")
	}
	if store.LastError() == "" {
		t.Error("error message not retained for the form")
	}
}

func TestTeardownClearsSession(t *testing.T) {
	store, cfg := newStore(t, "http://127.0.0.1:1")
	cfg.SetToken("about-to-expire")

	store.Teardown()

	if cfg.HasToken() {
		t.Error("token survived teardown")
	}
	if store.IsAuthenticated() {
		t.Error("user survived teardown")
	}
}
