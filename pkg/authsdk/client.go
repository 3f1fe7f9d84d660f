package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a thin remote-call wrapper around the identity service. The
// gateway uses VerifyToken on every inbound request; other services use it
// wherever they need to authenticate a presented token.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates an identity service client with a bounded request
// timeout. Infrastructure timeouts surface as transport errors, never as
// authentication failures.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.postJSON(ctx, "/auth/login", LoginRequest{
		Username: username,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyToken asks the identity service whether the token is currently valid
// and returns the principal it carries.
func (c *Client) VerifyToken(ctx context.Context, token string) (*PrincipalResponse, error) {
	var out PrincipalResponse
	err := c.postJSON(ctx, "/auth/verify-token", VerifyTokenRequest{Token: token}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades a refresh token for a new token pair. The presented refresh
// token is invalidated server-side; keep the returned one.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.postJSON(ctx, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the presented tokens. Calling it twice with the same
// tokens succeeds both times.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	return c.postJSON(ctx, "/auth/logout", LogoutRequest{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil)
}

// Bootstrap seeds the default roles and first admin account on a fresh
// deployment. Requires the pre-shared bootstrap token.
func (c *Client) Bootstrap(ctx context.Context, req BootstrapRequest) (*BootstrapResponse, error) {
	var out BootstrapResponse
	if err := c.postJSON(ctx, "/auth/bootstrap", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the caller's principal using an access token. Exercises the
// same verification path as VerifyToken but via the Authorization header.
func (c *Client) Me(ctx context.Context, accessToken string) (*PrincipalResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var out PrincipalResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRoles fetches the platform role catalogue. Requires an access token
// carrying the admin role.
func (c *Client) ListRoles(ctx context.Context, accessToken string) ([]RoleResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/roles", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var out []RoleResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// postJSON sends a JSON body and decodes the JSON response into out.
// A nil out discards the response body after error checking.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return decodeJSON(resp, out)
}

// decodeJSON reads the response once, returning a typed *APIError for non-2xx
// statuses and decoding into target otherwise.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp, bodyBytes)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
