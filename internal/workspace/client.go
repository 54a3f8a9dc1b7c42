// Package workspace is the boundary to the Databricks workspace SDK. The
// rest of the repository consumes the narrow Client interface; the SDK type
// below is the only place that touches databricks-sdk-go client construction.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/databricks/databricks-sdk-go"
)

// Client is the slice of workspace SDK behaviour the resolvers need.
type Client interface {
	// CurrentUserName returns the username (email) of the principal the
	// SDK authenticates as. Blocking network call.
	CurrentUserName(ctx context.Context) (string, error)
	// Host returns the configured workspace base URL. Local config read,
	// never a network call.
	Host() string
	// FreshToken mints a new bearer token from the client's credential
	// chain.
	FreshToken(ctx context.Context) (string, error)
}

// ErrNoUserName is returned when the workspace reports a principal without
// a resolvable username.
var ErrNoUserName = errors.New("workspace: current user has no username")

// SDK adapts a databricks-sdk-go WorkspaceClient to the Client interface.
type SDK struct {
	w *databricks.WorkspaceClient
}

// Options for constructing the underlying SDK client.
type Options struct {
	Host         string
	ClientID     string
	ClientSecret string
}

// NewSDK builds a workspace client. When both a client id and secret are
// provided it configures service-principal (M2M) OAuth explicitly so the SDK
// does not pick a conflicting ambient auth method; otherwise it leaves the
// SDK to auto-detect credentials.
func NewSDK(opts Options) (*SDK, error) {
	cfg := &databricks.Config{}
	if opts.ClientID != "" && opts.ClientSecret != "" {
		cfg = &databricks.Config{
			Host:         opts.Host,
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
		}
	}
	w, err := databricks.NewWorkspaceClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("workspace: new client: %w", err)
	}
	return &SDK{w: w}, nil
}

// CurrentUserName fetches the authenticated principal and returns its
// username.
func (s *SDK) CurrentUserName(ctx context.Context) (string, error) {
	me, err := s.w.CurrentUser.Me(ctx)
	if err != nil {
		return "", fmt.Errorf("workspace: current user: %w", err)
	}
	if me.UserName == "" {
		return "", ErrNoUserName
	}
	return me.UserName, nil
}

// Host returns the SDK's configured workspace URL.
func (s *SDK) Host() string {
	return s.w.Config.Host
}

// FreshToken runs the SDK's credential chain against a throwaway request and
// extracts the minted bearer token from the Authorization header it sets.
func (s *SDK) FreshToken(ctx context.Context) (string, error) {
	host := s.w.Config.Host
	if host == "" {
		host = "https://localhost"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host, nil)
	if err != nil {
		return "", fmt.Errorf("workspace: build auth request: %w", err)
	}
	if err := s.w.Config.Authenticate(req); err != nil {
		return "", fmt.Errorf("workspace: authenticate: %w", err)
	}
	header := req.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errors.New("workspace: credential chain produced no bearer token")
	}
	return token, nil
}

// Raw exposes the underlying WorkspaceClient for the per-service deleters.
func (s *SDK) Raw() *databricks.WorkspaceClient {
	return s.w
}
