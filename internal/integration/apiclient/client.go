// Package apiclient implements the presentation-side adapters over the Kakeibo HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/integration/entrypoint/dto"
)

// ErrNotSignedIn is returned when an authenticated call is made without stored credentials.
var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// RefreshError is returned when a rejected access token could not be refreshed.
// It unwraps to the refresh failure, not to the original 401.
type RefreshError struct {
	Rejected error
	Err      error
}

// Error implements the error interface.
func (e *RefreshError) Error() string {
	return fmt.Sprintf("%v; %v", e.Rejected, e.Err)
}

// Unwrap returns the refresh failure.
func (e *RefreshError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client performs JSON requests against the API and keeps the stored
// credentials fresh. An expired access token is refreshed once per call.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialStore

	// refreshMu serializes refreshes so concurrent 401s rotate the pair once.
	refreshMu sync.Mutex
}

// NewClient creates a client for the API rooted at baseURL (e.g. http://host/api/v1).
func NewClient(baseURL string, timeout time.Duration, credentials CredentialStore) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		credentials: credentials,
	}
}

// Credentials exposes the credential store backing the client.
func (c *Client) Credentials() CredentialStore {
	return c.credentials
}

// do sends an unauthenticated request.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.send(ctx, method, path, "", body, out)
}

// doAuthenticated sends a request with the stored access token, refreshing
// and retrying once when the API answers 401.
func (c *Client) doAuthenticated(ctx context.Context, method, path string, body, out interface{}) error {
	creds, err := c.credentials.Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil {
		return ErrNotSignedIn
	}

	err = c.send(ctx, method, path, creds.AccessToken, body, out)
	if !IsUnauthorized(err) {
		return err
	}

	refreshed, refreshErr := c.refresh(ctx, creds.AccessToken)
	if refreshErr != nil {
		slog.Debug("Token refresh failed", "error", refreshErr)
		return &RefreshError{Rejected: err, Err: refreshErr}
	}
	return c.send(ctx, method, path, refreshed.AccessToken, body, out)
}

// refresh rotates the token pair. staleAccess is the token that was rejected;
// when another caller already rotated it, the stored pair is reused.
func (c *Client) refresh(ctx context.Context, staleAccess string) (*Credentials, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	creds, err := c.credentials.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil {
		return nil, ErrNotSignedIn
	}
	if creds.AccessToken != staleAccess {
		return creds, nil
	}

	var pair dto.TokenResponse
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: creds.RefreshToken}, &pair); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	creds.AccessToken = pair.AccessToken
	creds.RefreshToken = pair.RefreshToken
	if err := c.credentials.Save(creds); err != nil {
		return nil, fmt.Errorf("failed to save refreshed credentials: %w", err)
	}
	return creds, nil
}

// send performs one HTTP round trip. Non-2xx responses become *APIError.
func (c *Client) send(ctx context.Context, method, path, accessToken string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody dto.ErrorResponse
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.Code = errBody.Code
		}
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// isInvalidCredential reports whether err means the stored credential can
// never succeed again, as opposed to a transient failure. After a failed
// refresh only the refresh response decides.
func isInvalidCredential(err error) bool {
	var refreshErr *RefreshError
	if errors.As(err, &refreshErr) {
		err = refreshErr.Err
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return false
	}
	switch domainerror.AuthErrorCode(apiErr.Code) {
	case domainerror.ErrCodeInvalidToken,
		domainerror.ErrCodeExpiredToken,
		domainerror.ErrCodeMissingToken,
		domainerror.ErrCodeUserNotFound:
		return true
	}
	return false
}
