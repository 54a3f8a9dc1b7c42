// Package agentbricks talks to the Agent Bricks and Genie REST endpoints
// directly. The workspace SDK has no surface for these services yet, so this
// client carries its own HTTP plumbing and OAuth wiring.
package agentbricks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client issues deletion calls against a workspace's Agent Bricks surface.
type Client struct {
	Host       string
	HTTPClient *http.Client
}

// Config selects how the client authenticates. Service-principal
// credentials win when fully present; otherwise Token is sent as-is.
type Config struct {
	Host         string
	ClientID     string
	ClientSecret string
	Token        string
	Timeout      time.Duration
}

// New builds a client. With a client id and secret it mints tokens through
// the workspace's OIDC client-credentials endpoint; with only a token it
// attaches that token to every request.
func New(cfg Config) (*Client, error) {
	host := strings.TrimSuffix(strings.TrimSpace(cfg.Host), "/")
	if host == "" {
		return nil, errors.New("agentbricks: host is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	base := &http.Client{Timeout: timeout}
	httpClient := base
	switch {
	case cfg.ClientID != "" && cfg.ClientSecret != "":
		creds := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     host + "/oidc/v1/token",
			AuthStyle:    oauth2.AuthStyleInHeader,
			EndpointParams: url.Values{
				"scope": {"all-apis"},
			},
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = creds.Client(ctx)
		httpClient.Timeout = timeout
	case cfg.Token != "":
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
		httpClient.Timeout = timeout
	default:
		return nil, errors.New("agentbricks: either client credentials or a token is required")
	}

	return &Client{Host: host, HTTPClient: httpClient}, nil
}

// DeleteGenieSpace removes a Genie space by id.
func (c *Client) DeleteGenieSpace(ctx context.Context, spaceID string) error {
	if spaceID == "" {
		return errors.New("agentbricks: space id is required")
	}
	return c.delete(ctx, "/api/2.0/genie/spaces/"+url.PathEscape(spaceID))
}

// DeleteTile removes an Agent Bricks tile by id. Knowledge assistants and
// multi-agent supervisors are both tiles.
func (c *Client) DeleteTile(ctx context.Context, tileID string) error {
	if tileID == "" {
		return errors.New("agentbricks: tile id is required")
	}
	return c.delete(ctx, "/api/2.0/agent-bricks/tiles/"+url.PathEscape(tileID))
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.Host+path, nil)
	if err != nil {
		return fmt.Errorf("agentbricks: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("agentbricks: delete %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return fmt.Errorf("agentbricks: delete %s returned %d: %s", path, res.StatusCode, msg)
	}
	return nil
}
