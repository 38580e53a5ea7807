// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bskyctl/bskyctl/lib/clock"
)

// defaultService is the hosted Bluesky PDS entrypoint.
const defaultService = "https://bsky.social"

// maxResponseSize bounds how much of a response body is read. XRPC
// responses here are JSON pages, so anything near this is a broken or
// hostile server.
const maxResponseSize = 8 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// Service is the PDS base URL. Defaults to "https://bsky.social".
	// Must use HTTPS except for loopback addresses (local dev PDS).
	Service string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time operations (record createdAt stamps).
	// Defaults to clock.Real(); inject clock.Fake() in tests.
	Clock clock.Clock

	// Logger is used for structured diagnostics. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// OnSessionChange is invoked with the new session after every
	// successful login or token refresh, so the caller can persist
	// the rotated JWTs. Optional.
	OnSessionChange func(Session)
}

// Client is a typed AT Protocol XRPC client with session management
// and automatic expired-token refresh.
type Client struct {
	service         string
	httpClient      *http.Client
	clock           clock.Clock
	logger          *slog.Logger
	onSessionChange func(Session)

	mu      sync.Mutex
	session Session
}

// NewClient creates a client from the given configuration. Returns an
// error if the service URL is not HTTPS (loopback excepted).
func NewClient(config Config) (*Client, error) {
	service := config.Service
	if service == "" {
		service = defaultService
	}
	service = strings.TrimRight(service, "/")

	if !strings.HasPrefix(service, "https://") && !isLoopback(service) {
		return nil, fmt.Errorf("atproto: service URL must use HTTPS (got %q)", service)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		service:         service,
		httpClient:      httpClient,
		clock:           clk,
		logger:          logger,
		onSessionChange: config.OnSessionChange,
	}, nil
}

// isLoopback reports whether the service URL points at this machine,
// where a plaintext local dev PDS is acceptable.
func isLoopback(service string) bool {
	parsed, err := url.Parse(service)
	if err != nil {
		return false
	}
	switch parsed.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// Login creates a fresh session from an identifier (handle or DID) and
// an app password, and installs it on the client.
func (client *Client) Login(ctx context.Context, identifier, password string) (Session, error) {
	request := struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}{Identifier: identifier, Password: password}

	body, err := client.doRaw(ctx, http.MethodPost, xrpcPath("com.atproto.server.createSession", nil), request, "")
	if err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return Session{}, fmt.Errorf("decoding session: %w", err)
	}
	client.setSession(session)
	return session, nil
}

// SetSession installs a previously saved session, typically loaded
// from the on-disk cache. No network call is made; if the access token
// has expired in the meantime, the first request refreshes it.
func (client *Client) SetSession(session Session) {
	client.mu.Lock()
	client.session = session
	client.mu.Unlock()
}

// Session returns a copy of the current session. Zero when the client
// has never logged in.
func (client *Client) Session() Session {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.session
}

func (client *Client) setSession(session Session) {
	client.mu.Lock()
	client.session = session
	client.mu.Unlock()
	if client.onSessionChange != nil {
		client.onSessionChange(session)
	}
}

// refreshSession trades the refresh JWT for a new token pair.
func (client *Client) refreshSession(ctx context.Context) error {
	refreshToken := client.Session().RefreshJWT
	if refreshToken == "" {
		return &Error{StatusCode: 401, Code: "AuthenticationRequired", Message: "no session to refresh"}
	}

	client.logger.Debug("access token expired, refreshing session")
	body, err := client.doRaw(ctx, http.MethodPost, xrpcPath("com.atproto.server.refreshSession", nil), nil, refreshToken)
	if err != nil {
		return fmt.Errorf("refreshing session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return fmt.Errorf("decoding refreshed session: %w", err)
	}
	client.setSession(session)
	return nil
}

// GetSession asks the server about the current session. It doubles as
// a cheap validity probe for cached tokens: an expired access token is
// refreshed transparently, and a dead refresh token surfaces as an
// auth error the caller can turn into a password login.
func (client *Client) GetSession(ctx context.Context) (SessionInfo, error) {
	var info SessionInfo
	if err := client.get(ctx, "com.atproto.server.getSession", nil, &info); err != nil {
		return SessionInfo{}, fmt.Errorf("fetching session: %w", err)
	}
	return info, nil
}

// do executes an authenticated XRPC request and decodes the JSON
// response into result (pass nil to discard the body). On ExpiredToken
// the session is refreshed and the request replayed once.
func (client *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	body, err := client.doWithRefresh(ctx, method, path, requestBody, false)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("atproto: decoding response: %w", err)
	}
	return nil
}

// doWithRefresh is the internal implementation of do with a retry flag
// to prevent refresh loops when the server keeps answering
// ExpiredToken.
func (client *Client) doWithRefresh(ctx context.Context, method, path string, requestBody any, isRetry bool) ([]byte, error) {
	body, err := client.doRaw(ctx, method, path, requestBody, client.Session().AccessJWT)
	if err == nil {
		return body, nil
	}
	if isRetry || !IsExpiredToken(err) {
		return nil, err
	}
	if refreshErr := client.refreshSession(ctx); refreshErr != nil {
		return nil, refreshErr
	}
	return client.doWithRefresh(ctx, method, path, requestBody, true)
}

// doRaw executes one HTTP round trip: JSON-encode the body, attach the
// bearer token (empty for unauthenticated calls), bound the response
// read, and parse non-2xx bodies into *Error.
func (client *Client) doRaw(ctx context.Context, method, path string, requestBody any, bearer string) ([]byte, error) {
	requestURL := client.service + path

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("atproto: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("atproto: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("atproto: %s %s: %w", method, requestURL, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("atproto: reading response body: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("atproto: response body exceeds %d bytes", maxResponseSize)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, parseError(response.StatusCode, body)
	}
	return body, nil
}

// get is a convenience wrapper for GET requests.
func (client *Client) get(ctx context.Context, method string, query url.Values, result any) error {
	return client.do(ctx, http.MethodGet, xrpcPath(method, query), nil, result)
}

// post is a convenience wrapper for POST requests.
func (client *Client) post(ctx context.Context, method string, requestBody, result any) error {
	return client.do(ctx, http.MethodPost, xrpcPath(method, nil), requestBody, result)
}

// xrpcPath builds the request path for an XRPC method name.
func xrpcPath(method string, query url.Values) string {
	path := "/xrpc/" + method
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path
}

// now formats the current time the way record createdAt fields expect.
func (client *Client) now() string {
	return client.clock.Now().UTC().Format(time.RFC3339)
}
