// Package api implements the HTTP transport to the Parley server.
//
// A single Client is shared by every manager. Two cross-cutting behaviors
// live here and nowhere else: outgoing requests carry the bearer token
// whenever the TokenSource has one, and any unauthorized response fires the
// global teardown hook before the per-call error is returned to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	perrors "github.com/parley-chat/parley/internal/errors"
	"github.com/parley-chat/parley/internal/logger"
)

const (
	apiPrefix   = "/api/v1"
	httpTimeout = 30 * time.Second
)

// TokenSource supplies the current session token. The transport reads it
// fresh on every request and never mutates it; credential state is owned by
// the session store.
type TokenSource interface {
	Token() string
}

// Client is the shared HTTP client bound to one server.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// New creates a client for the given server base URL.
func New(baseURL string, tokens TokenSource) *Client {
	return NewWithClient(baseURL, tokens, &http.Client{Timeout: httpTimeout})
}

// NewWithClient creates a client with a custom HTTP client (for testing).
func NewWithClient(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// SetUnauthorizedHandler registers the hook invoked whenever any response
// comes back unauthorized, regardless of which operation triggered it. The
// hook runs before the caller sees the error and cannot be skipped.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// envelope is the standard success wrapper: {"data": ...}
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// serverError is the standard failure body: {"message": "..."}
type serverError struct {
	Message string `json:"message"`
}

// get issues a GET request and decodes the enveloped payload into out.
func (c *Client) get(ctx context.Context, path string, out any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPrefix+path, nil)
	if err != nil {
		return perrors.E(perrors.Op("api.get"), perrors.KindNetwork, err)
	}
	return c.do(req, out, fallback)
}

// postJSON issues a POST with a JSON body and decodes the enveloped payload.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any, fallback string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return perrors.E(perrors.Op("api.postJSON"), perrors.KindNetwork, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+path, bytes.NewReader(data))
	if err != nil {
		return perrors.E(perrors.Op("api.postJSON"), perrors.KindNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, fallback)
}

// submitMultipart issues a POST or PUT with multipart form fields plus an
// optional image attachment under the "image" field.
func (c *Client) submitMultipart(ctx context.Context, method, path string, fields map[string]string, image *ImageAttachment, out any, fallback string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return perrors.E(perrors.Op("api.submitMultipart"), perrors.KindIO, err)
		}
	}
	if image != nil {
		part, err := w.CreateFormFile("image", image.Filename)
		if err != nil {
			return perrors.E(perrors.Op("api.submitMultipart"), perrors.KindIO, err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return perrors.E(perrors.Op("api.submitMultipart"), perrors.KindIO, err)
		}
	}
	if err := w.Close(); err != nil {
		return perrors.E(perrors.Op("api.submitMultipart"), perrors.KindIO, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, &buf)
	if err != nil {
		return perrors.E(perrors.Op("api.submitMultipart"), perrors.KindNetwork, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out, fallback)
}

// delete issues a DELETE request, discarding any success payload.
func (c *Client) delete(ctx context.Context, path string, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+apiPrefix+path, nil)
	if err != nil {
		return perrors.E(perrors.Op("api.delete"), perrors.KindNetwork, err)
	}
	return c.do(req, nil, fallback)
}

// do executes the request, applying the bearer credential and the global
// unauthorized policy, then decodes the {"data": ...} envelope into out.
func (c *Client) do(req *http.Request, out any, fallback string) error {
	reqID := uuid.NewString()
	op := perrors.Op("api." + req.Method)

	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("API: %s %s [%s]", req.Method, req.URL.Path, reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := perrors.KindNetwork
		if ctxErr := req.Context().Err(); ctxErr == context.DeadlineExceeded {
			kind = perrors.KindTimeout
		}
		logger.Debug("API: %s %s failed [%s]: %v", req.Method, req.URL.Path, reqID, err)
		return perrors.E(op, kind, fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		logger.Info("API: unauthorized response from %s [%s], tearing down session", req.URL.Path, reqID)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return perrors.E(op, perrors.KindAuth, c.errorMessage(resp.Body, fallback))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("API: %s %s returned %d [%s]", req.Method, req.URL.Path, resp.StatusCode, reqID)
		return perrors.E(op, kindForStatus(resp.StatusCode), c.errorMessage(resp.Body, fallback))
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return perrors.E(op, perrors.KindMalformed, "failed to parse server response", err)
	}
	if env.Data == nil {
		return perrors.E(op, perrors.KindMalformed, "server response missing data field")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return perrors.E(op, perrors.KindMalformed, "unexpected payload shape", err)
	}
	return nil
}

// errorMessage extracts the server-supplied message from a failure body,
// falling back to a generic description. Servers don't always send one.
func (c *Client) errorMessage(body io.Reader, fallback string) string {
	var se serverError
	if err := json.NewDecoder(body).Decode(&se); err == nil && se.Message != "" {
		return se.Message
	}
	return fallback
}

// kindForStatus maps a non-2xx HTTP status to an error kind.
func kindForStatus(code int) perrors.Kind {
	switch {
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return perrors.KindValidation
	case code == http.StatusNotFound:
		return perrors.KindNotFound
	case code == http.StatusConflict:
		return perrors.KindConflict
	case code >= 500:
		return perrors.KindNetwork
	default:
		return perrors.KindNetwork
	}
}

// Healthy is a cheap reachability probe used by the CLI. Not part of the
// documented contract; a 404 still proves the server answered.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return perrors.E(perrors.Op("api.Healthy"), perrors.KindNetwork, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return perrors.E(perrors.Op("api.Healthy"), perrors.KindNetwork, fmt.Sprintf("server unreachable at %s", c.baseURL), err)
	}
	resp.Body.Close()
	return nil
}
