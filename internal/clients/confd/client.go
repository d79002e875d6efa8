// internal/clients/confd/client.go
package confd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// User is one row of confd's directory view of the internal user base.
type User struct {
	ID        int
	UUID      string
	AgentID   *int
	LineID    *int
	Firstname string
	Lastname  string
	Email     string
	Exten     string
	MobileNo  string
	Voicemail string
	Userfield string
}

// Client talks to the platform user/device configuration service (confd).
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

// ListUsers queries the directory view, optionally filtered by search term.
func (c *Client) ListUsers(ctx context.Context, token, tenantUUID, search string) ([]User, error) {
	endpoint := fmt.Sprintf("%s/1.1/users?view=directory", c.baseURL)
	if search != "" {
		endpoint += "&search=" + url.QueryEscape(search)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Auth-Token", token)
	req.Header.Set("Wazo-Tenant", tenantUUID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("confd unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("confd users: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read confd response: %w", err)
	}

	var users []User
	for _, item := range gjson.GetBytes(body, "items").Array() {
		u := User{
			ID:        int(item.Get("id").Int()),
			UUID:      item.Get("uuid").String(),
			Firstname: item.Get("firstname").String(),
			Lastname:  item.Get("lastname").String(),
			Email:     item.Get("email").String(),
			Exten:     item.Get("exten").String(),
			MobileNo:  item.Get("mobile_phone_number").String(),
			Voicemail: item.Get("voicemail_number").String(),
			Userfield: item.Get("userfield").String(),
		}
		if agent := item.Get("agent_id"); agent.Exists() && agent.Type != gjson.Null {
			id := int(agent.Int())
			u.AgentID = &id
		}
		if line := item.Get("line_id"); line.Exists() && line.Type != gjson.Null {
			id := int(line.Int())
			u.LineID = &id
		}
		users = append(users, u)
	}
	return users, nil
}
