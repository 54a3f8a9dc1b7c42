// Package auth resolves the caller's identity and the credential material to
// use for downstream workspace calls.
//
// In production (Databricks Apps) the trusted reverse proxy asserts the end
// user via the X-Forwarded-User header and the platform injects
// service-principal credentials through the environment. In development the
// resolver falls back to the workspace SDK and local environment variables.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/lakehouse-portfolio/workspace-tools/internal/workspace"
)

// ForwardedUserHeader is set by the Databricks Apps reverse proxy. It is
// trusted because the proxy strips any client-supplied value.
const ForwardedUserHeader = "X-Forwarded-User"

// ErrUnresolvedIdentity is returned when no caller identity can be
// determined. In production this means the app is misconfigured.
var ErrUnresolvedIdentity = errors.New("auth: caller identity could not be resolved")

// cell is a single-slot, process-lifetime memoization of one string value.
// Concurrent first-time population is last-write-wins; callers are expected
// to compute identical values, so a race only costs a duplicate lookup.
type cell struct {
	mu    sync.Mutex
	value string
	set   bool
}

func (c *cell) get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

func (c *cell) put(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.set = true
}

// Resolver answers "who is calling" and "which credential to use" for a
// request. Construct one per process; its caches live as long as it does, so
// tests get a clean slate by constructing a fresh Resolver.
type Resolver struct {
	cfg    Config
	client workspace.Client
	logger *slog.Logger

	devUser      cell
	workspaceURL cell
}

// NewResolver wires a resolver with its configuration and workspace client.
func NewResolver(cfg Config, client workspace.Client, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, client: client, logger: logger}
}

// ResolveIdentity returns the caller's identity for the request.
//
// A non-empty X-Forwarded-User header wins unconditionally and is never
// cached: it is request-scoped truth from the proxy. Without the header,
// development mode resolves (and memoizes) the SDK's current user; production
// mode fails outright.
func (r *Resolver) ResolveIdentity(ctx context.Context, req *http.Request) (string, error) {
	if user := req.Header.Get(ForwardedUserHeader); user != "" {
		r.logger.Debug("identity from forwarded header", "user", user)
		return user, nil
	}

	if r.cfg.Development() {
		return r.devIdentity(ctx)
	}

	return "", fmt.Errorf("%w: no %s header and not in development mode; deploy the app with user authentication enabled", ErrUnresolvedIdentity, ForwardedUserHeader)
}

func (r *Resolver) devIdentity(ctx context.Context) (string, error) {
	if user, ok := r.devUser.get(); ok {
		return user, nil
	}
	if r.client == nil {
		return "", fmt.Errorf("%w: no workspace client configured", ErrUnresolvedIdentity)
	}

	r.logger.Info("fetching current user from workspace client")
	user, err := r.client.CurrentUserName(ctx)
	if err != nil {
		r.logger.Error("workspace current-user lookup failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrUnresolvedIdentity, err)
	}

	r.devUser.put(user)
	r.logger.Info("cached development user", "user", user)
	return user, nil
}

// CallCredential returns the bearer token for ordinary workspace operations,
// or "" meaning "use the ambient service-principal credential chain".
//
// Production always returns "": Databricks Apps injects SP credentials via
// the environment and the SDK picks them up on its own. Development returns
// the configured DATABRICKS_TOKEN when set.
func (r *Resolver) CallCredential() string {
	if !r.cfg.Development() {
		r.logger.Debug("production mode: deferring to ambient service-principal credentials")
		return ""
	}
	return r.cfg.Token
}

// DelegatedServingCredential returns a bearer token for the model-serving
// API, which requires a fresh token rather than the ambient chain.
//
// Production mints a token from the service-principal credential chain; any
// failure there is logged and the development fallback is used instead —
// minting problems are never surfaced to the caller. Development (and the
// fallback) returns the configured token or "".
func (r *Resolver) DelegatedServingCredential(ctx context.Context) string {
	if !r.cfg.Development() && r.client != nil {
		token, err := r.client.FreshToken(ctx)
		if err == nil && token != "" {
			r.logger.Info("minted serving token from service-principal credentials", "length", len(token))
			return token
		}
		if err != nil {
			r.logger.Warn("failed to mint service-principal token", "error", err)
		}
	}

	return r.cfg.Token
}

// WorkspaceURL returns the workspace base URL, memoized for the life of the
// resolver. The configured host wins, with one trailing slash trimmed;
// otherwise the SDK's configured host is used (a local config read). On any
// failure it returns "" — callers treat empty as unknown.
func (r *Resolver) WorkspaceURL() string {
	if url, ok := r.workspaceURL.get(); ok {
		return url
	}

	if r.cfg.Host != "" {
		url := strings.TrimSuffix(r.cfg.Host, "/")
		r.workspaceURL.put(url)
		return url
	}

	if r.client == nil {
		r.logger.Error("workspace URL unavailable: no host configured and no workspace client")
		return ""
	}
	host := r.client.Host()
	if host == "" {
		r.logger.Error("workspace URL unavailable: workspace client has no host")
		return ""
	}
	url := strings.TrimSuffix(host, "/")
	r.workspaceURL.put(url)
	return url
}
