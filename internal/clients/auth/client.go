// internal/clients/auth/client.go
package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	xerrors "dird-service/internal/pkg/errors"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// TokenInfo is what the auth service knows about a bearer token.
type TokenInfo struct {
	Token      string
	UserUUID   string
	TenantUUID string
	ACL        []string
}

// Client talks to the platform auth service. Tokens are opaque strings; dird
// never inspects them locally.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CheckToken verifies token validity without retrieving metadata.
func (c *Client) CheckToken(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead,
		fmt.Sprintf("%s/0.1/token/%s", c.baseURL, url.PathEscape(token)), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
		return nil
	}
	return xerrors.ErrUnauthorized
}

// TokenInfo retrieves {user_uuid, tenant_uuid, acl} for a token.
func (c *Client) TokenInfo(ctx context.Context, token string) (*TokenInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/0.1/token/%s", c.baseURL, url.PathEscape(token)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.ErrUnauthorized
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token info: %w", err)
	}

	data := gjson.GetBytes(body, "data")
	info := &TokenInfo{
		Token:      token,
		UserUUID:   data.Get("metadata.uuid").String(),
		TenantUUID: data.Get("metadata.tenant_uuid").String(),
	}
	for _, entry := range data.Get("acl").Array() {
		info.ACL = append(info.ACL, entry.String())
	}

	if info.UserUUID == "" || info.TenantUUID == "" {
		return nil, xerrors.ErrUnauthorized
	}
	return info, nil
}

// ExternalTokenGet exchanges the caller's identity for a provider access
// token ("google", "microsoft"). Returns ErrNoSuchExternalToken when the user
// never linked the provider.
func (c *Client) ExternalTokenGet(ctx context.Context, token, provider, userUUID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/0.1/users/%s/external/%s", c.baseURL, url.PathEscape(userUUID), url.PathEscape(provider)), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Auth-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", xerrors.ErrNoSuchExternalToken
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth external token: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read external token: %w", err)
	}

	accessToken := gjson.GetBytes(body, "access_token").String()
	if accessToken == "" {
		return "", xerrors.ErrNoSuchExternalToken
	}
	return accessToken, nil
}
