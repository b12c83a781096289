package mcp

import (
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"testing"

	"github.com/felixgeelhaar/agent-router/domain/connection"
)

func TestHeaderRoundTripper(t *testing.T) {
	t.Parallel()

	got := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	d := &SDKDialer{HTTPClient: srv.Client()}
	client := d.httpClient(map[string]string{
		"Authorization": "Bearer secret",
		"X-Team":        "platform",
	})

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Team", "override-me")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	_ = resp.Body.Close()

	h := <-got
	if h.Get("Authorization") != "Bearer secret" {
		t.Errorf("Authorization = %q", h.Get("Authorization"))
	}
	if h.Get("X-Team") != "platform" {
		t.Errorf("X-Team = %q, want platform", h.Get("X-Team"))
	}
	if req.Header.Get("Authorization") != "" {
		t.Error("original request was mutated")
	}
}

func TestHeaderRoundTripper_NoHeaders(t *testing.T) {
	t.Parallel()

	base := http.DefaultTransport
	if rt := newHeaderRoundTripper(map[string]string{"": "x"}, base); rt != base {
		t.Errorf("newHeaderRoundTripper() = %T, want base transport", rt)
	}

	d := &SDKDialer{}
	if d.httpClient(nil) != http.DefaultClient {
		t.Error("httpClient(nil) should reuse the default client")
	}
}

func TestCommand(t *testing.T) {
	t.Parallel()

	cmd := command(connection.Config{
		Name:      "code",
		Transport: connection.TransportSubprocess,
		Command:   "code-mcp",
		Args:      []string{"--stdio"},
		Env:       map[string]string{"B": "2", "A": "1"},
		WorkDir:   "/srv",
	})

	if !slices.Equal(cmd.Args, []string{"code-mcp", "--stdio"}) {
		t.Errorf("Args = %v", cmd.Args)
	}
	if cmd.Dir != "/srv" {
		t.Errorf("Dir = %q", cmd.Dir)
	}
	n := len(os.Environ())
	if len(cmd.Env) != n+2 {
		t.Fatalf("len(Env) = %d, want %d", len(cmd.Env), n+2)
	}
	if !slices.Equal(cmd.Env[n:], []string{"A=1", "B=2"}) {
		t.Errorf("configured env = %v", cmd.Env[n:])
	}

	plain := command(connection.Config{Command: "code-mcp"})
	if plain.Env != nil {
		t.Error("Env should be inherited when no variables are configured")
	}
}
