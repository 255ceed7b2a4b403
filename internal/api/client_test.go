package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	perrors "github.com/parley-chat/parley/internal/errors"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"data": []Character{}})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok-123"))
	if _, err := c.ListCharacters(context.Background()); err != nil {
		t.Fatalf("ListCharacters: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestNoTokenNoAuthorizationHeader(t *testing.T) {
	var gotAuth string
	var hadHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadHeader = r.Header["Authorization"]
		json.NewEncoder(w).Encode(map[string]any{"data": []Character{}})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	if _, err := c.ListCharacters(context.Background()); err != nil {
		t.Fatalf("ListCharacters: %v", err)
	}
	if hadHeader {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
}

func TestEnvelopeDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/characters" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": []Character{
			{ID: "c1", Name: "Mira"},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	characters, err := c.ListCharacters(context.Background())
	if err != nil {
		t.Fatalf("ListCharacters: %v", err)
	}
	if len(characters) != 1 || characters[0].ID != "c1" || characters[0].Name != "Mira" {
		t.Errorf("unexpected payload: %+v", characters)
	}
}

func TestServerErrorMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Name already taken"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	_, err := c.CreateCharacter(context.Background(), CharacterDraft{Name: "Mira"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := perrors.UserMessage(err); got != "Name already taken" {
		t.Errorf("message = %q, want server-supplied message", got)
	}
	if !perrors.Is(err, perrors.KindValidation) {
		t.Errorf("kind = %v, want validation", perrors.GetKind(err))
	}
}

func TestFallbackMessageWhenBodyHasNone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	_, err := c.ListCharacters(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := perrors.UserMessage(err); got != "Failed to load characters. Please try again." {
		t.Errorf("message = %q, want the fallback", got)
	}
}

func TestUnauthorizedFiresHandlerBeforeReturn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Token expired"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("stale"))
	fired := false
	c.SetUnauthorizedHandler(func() { fired = true })

	_, err := c.ListCharacters(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !fired {
		t.Error("unauthorized handler not fired")
	}
	if !perrors.Is(err, perrors.KindAuth) {
		t.Errorf("kind = %v, want auth", perrors.GetKind(err))
	}
}

func TestSendMessageBodyAndReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/c1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		json.Unmarshal(body, &req)
		if req["message"] != "hello there" {
			t.Errorf("message field = %q", req["message"])
		}
		json.NewEncoder(w).Encode(map[string]any{"data": ChatReply{Response: "hi", Timestamp: 99}})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))
	reply, err := c.SendMessage(context.Background(), "c1", "hello there")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if reply.Response != "hi" || reply.Timestamp != 99 {
		t.Errorf("reply = %+v", reply)
	}
}

func TestRegisterMultipartCarriesImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("username"); got != "mira" {
			t.Errorf("username = %q", got)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "avatar.png" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "png-bytes" {
			t.Errorf("image data = %q", data)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": Session{Token: "t", User: User{ID: "u1", Username: "mira"}}})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	sess, err := c.Register(context.Background(), RegisterRequest{
		Username: "mira",
		Email:    "m@example.com",
		Password: "secret",
		Image:    &ImageAttachment{Filename: "avatar.png", Data: []byte("png-bytes")},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.Token != "t" || sess.User.Username != "mira" {
		t.Errorf("session = %+v", sess)
	}
}

func TestMissingDataFieldIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"unexpected": "shape"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !perrors.Is(err, perrors.KindMalformed) {
		t.Errorf("kind = %v, want malformed", perrors.GetKind(err))
	}
}
