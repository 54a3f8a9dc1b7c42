package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

type fakeWorkspace struct {
	user      string
	userErr   error
	userCalls int

	host string

	token      string
	tokenErr   error
	tokenCalls int
}

func (f *fakeWorkspace) CurrentUserName(context.Context) (string, error) {
	f.userCalls++
	return f.user, f.userErr
}

func (f *fakeWorkspace) Host() string { return f.host }

func (f *fakeWorkspace) FreshToken(context.Context) (string, error) {
	f.tokenCalls++
	return f.token, f.tokenErr
}

func TestResolveIdentityForwardedHeader(t *testing.T) {
	for _, mode := range []Mode{ModeDevelopment, ModeProduction} {
		fake := &fakeWorkspace{user: "sdk@example.com"}
		resolver := NewResolver(Config{Mode: mode}, fake, nil)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(ForwardedUserHeader, "alice@example.com")

		user, err := resolver.ResolveIdentity(context.Background(), req)
		if err != nil {
			t.Fatalf("mode %s: ResolveIdentity error: %v", mode, err)
		}
		if user != "alice@example.com" {
			t.Fatalf("mode %s: got %q, want header value verbatim", mode, user)
		}
		if fake.userCalls != 0 {
			t.Fatalf("mode %s: workspace lookup performed despite header", mode)
		}
	}
}

func TestResolveIdentityProductionWithoutHeader(t *testing.T) {
	resolver := NewResolver(Config{Mode: ModeProduction}, &fakeWorkspace{user: "sdk@example.com"}, nil)

	_, err := resolver.ResolveIdentity(context.Background(), httptest.NewRequest("GET", "/", nil))
	if !errors.Is(err, ErrUnresolvedIdentity) {
		t.Fatalf("expected ErrUnresolvedIdentity, got %v", err)
	}
}

func TestResolveIdentityDevelopmentCachesLookup(t *testing.T) {
	fake := &fakeWorkspace{user: "dev@example.com"}
	resolver := NewResolver(Config{Mode: ModeDevelopment}, fake, nil)

	req := httptest.NewRequest("GET", "/", nil)
	first, err := resolver.ResolveIdentity(context.Background(), req)
	if err != nil {
		t.Fatalf("first resolve error: %v", err)
	}
	second, err := resolver.ResolveIdentity(context.Background(), req)
	if err != nil {
		t.Fatalf("second resolve error: %v", err)
	}
	if first != "dev@example.com" || second != first {
		t.Fatalf("expected identical cached identity, got %q then %q", first, second)
	}
	if fake.userCalls != 1 {
		t.Fatalf("expected exactly one workspace lookup, got %d", fake.userCalls)
	}
}

func TestResolveIdentityDevelopmentLookupFailure(t *testing.T) {
	fake := &fakeWorkspace{userErr: errors.New("no username on principal")}
	resolver := NewResolver(Config{Mode: ModeDevelopment}, fake, nil)

	_, err := resolver.ResolveIdentity(context.Background(), httptest.NewRequest("GET", "/", nil))
	if !errors.Is(err, ErrUnresolvedIdentity) {
		t.Fatalf("expected ErrUnresolvedIdentity, got %v", err)
	}
}

func TestCallCredential(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"production ignores env token", Config{Mode: ModeProduction, Token: "dapi-secret"}, ""},
		{"development uses env token", Config{Mode: ModeDevelopment, Token: "dapi-secret"}, "dapi-secret"},
		{"development without token", Config{Mode: ModeDevelopment}, ""},
	}
	for _, tc := range cases {
		resolver := NewResolver(tc.cfg, &fakeWorkspace{}, nil)
		if got := resolver.CallCredential(); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDelegatedServingCredentialProductionMints(t *testing.T) {
	fake := &fakeWorkspace{token: "minted-token"}
	resolver := NewResolver(Config{Mode: ModeProduction, Token: "dapi-fallback"}, fake, nil)

	if got := resolver.DelegatedServingCredential(context.Background()); got != "minted-token" {
		t.Fatalf("got %q, want minted token", got)
	}
}

func TestDelegatedServingCredentialFallsBackOnMintFailure(t *testing.T) {
	fake := &fakeWorkspace{tokenErr: errors.New("oauth exchange failed")}
	resolver := NewResolver(Config{Mode: ModeProduction, Token: "dapi-fallback"}, fake, nil)

	if got := resolver.DelegatedServingCredential(context.Background()); got != "dapi-fallback" {
		t.Fatalf("got %q, want fallback token", got)
	}
}

func TestDelegatedServingCredentialDevelopment(t *testing.T) {
	fake := &fakeWorkspace{token: "minted-token"}
	resolver := NewResolver(Config{Mode: ModeDevelopment, Token: "dapi-dev"}, fake, nil)

	if got := resolver.DelegatedServingCredential(context.Background()); got != "dapi-dev" {
		t.Fatalf("got %q, want dev token", got)
	}
	if fake.tokenCalls != 0 {
		t.Fatalf("development mode must not mint tokens, got %d calls", fake.tokenCalls)
	}
}

func TestWorkspaceURLTrimsTrailingSlash(t *testing.T) {
	resolver := NewResolver(Config{Host: "https://x.cloud.databricks.com/"}, &fakeWorkspace{}, nil)

	want := "https://x.cloud.databricks.com"
	if got := resolver.WorkspaceURL(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := resolver.WorkspaceURL(); got != want {
		t.Fatalf("cached read got %q, want %q", got, want)
	}
}

func TestWorkspaceURLFromClientConfig(t *testing.T) {
	fake := &fakeWorkspace{host: "https://from-sdk.cloud.databricks.com/"}
	resolver := NewResolver(Config{}, fake, nil)

	if got := resolver.WorkspaceURL(); got != "https://from-sdk.cloud.databricks.com" {
		t.Fatalf("got %q, want SDK host", got)
	}
}

func TestWorkspaceURLUnavailable(t *testing.T) {
	resolver := NewResolver(Config{}, nil, nil)
	if got := resolver.WorkspaceURL(); got != "" {
		t.Fatalf("got %q, want empty string for unknown", got)
	}

	resolver = NewResolver(Config{}, &fakeWorkspace{}, nil)
	if got := resolver.WorkspaceURL(); got != "" {
		t.Fatalf("got %q, want empty string when client has no host", got)
	}
}
