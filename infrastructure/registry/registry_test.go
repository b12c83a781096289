package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/local"
)

func noop(context.Context, json.RawMessage) (tool.Result, error) {
	return tool.NewResult(json.RawMessage(`{}`)), nil
}

// fakeSource is a fixed remote connection.
type fakeSource struct {
	id    string
	tools []tool.Descriptor
}

func newFakeSource(id string, names ...string) *fakeSource {
	s := &fakeSource{id: id}
	for _, n := range names {
		s.tools = append(s.tools, tool.Descriptor{
			Name:       n,
			SourceID:   id,
			SourceKind: tool.SourceRemote,
			Tool:       tool.NewBuilder(n).WithHandler(noop).MustBuild(),
		})
	}
	return s
}

func (s *fakeSource) ID() string               { return s.id }
func (s *fakeSource) Kind() tool.SourceKind    { return tool.SourceRemote }
func (s *fakeSource) Tools() []tool.Descriptor { return s.tools }
func (s *fakeSource) Lookup(name string) (tool.Descriptor, bool) {
	for _, d := range s.tools {
		if d.Name == name {
			return d, true
		}
	}
	return tool.Descriptor{}, false
}

// fakeRemote holds connected and failed connections.
type fakeRemote struct {
	connected []*fakeSource
	failed    []string
}

func (f *fakeRemote) Sources() []tool.Source {
	out := make([]tool.Source, 0, len(f.connected))
	for _, s := range f.connected {
		out = append(out, s)
	}
	return out
}

func (f *fakeRemote) Connection(name string) (tool.Source, bool) {
	for _, s := range f.connected {
		if s.id == name {
			return s, true
		}
	}
	for _, n := range f.failed {
		if n == name {
			return &fakeSource{id: n}, true
		}
	}
	return nil, false
}

func (f *fakeRemote) IsConfigured(name string) bool {
	_, ok := f.Connection(name)
	return ok
}

func (f *fakeRemote) LookupQualified(conn, name string) (tool.Descriptor, bool) {
	s, ok := f.Connection(conn)
	if !ok {
		return tool.Descriptor{}, false
	}
	return s.Lookup(name)
}

func (f *fakeRemote) Configured() int { return len(f.connected) + len(f.failed) }

func sourceIDs(sources []tool.Source) []string {
	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID())
	}
	return ids
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	catalog := tool.NewCatalog()
	localSource := local.NewSource([]local.Registration{
		local.Func("echo", "Echoes input", noop),
		local.Func("search", "Local search", noop),
	}, nil, local.WithCatalog(catalog))
	remote := &fakeRemote{
		connected: []*fakeSource{
			newFakeSource("code", "read_file", "search"),
			newFakeSource("docs", "fetch"),
		},
		failed: []string{"broken"},
	}
	r := New(catalog, localSource, remote)

	if diff := cmp.Diff([]string{"local", "code", "docs"}, sourceIDs(r.Sources())); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"code", "docs"}, sourceIDs(r.Remote())); diff != "" {
		t.Errorf("Remote() mismatch (-want +got):\n%s", diff)
	}
	if r.Local().ID() != tool.LocalSourceID {
		t.Errorf("Local().ID() = %s", r.Local().ID())
	}

	t.Run("bare lookup prefers earlier sources", func(t *testing.T) {
		t.Parallel()

		d, ok := r.Lookup("search")
		if !ok || d.SourceID != tool.LocalSourceID {
			t.Errorf("Lookup(search) = %+v, %v", d, ok)
		}
		d, ok = r.Lookup("fetch")
		if !ok || d.SourceID != "docs" {
			t.Errorf("Lookup(fetch) = %+v, %v", d, ok)
		}
		if _, ok := r.Lookup("missing"); ok {
			t.Error("Lookup(missing) found a tool")
		}
	})

	t.Run("qualified lookup", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			source, name string
			wantOK       bool
		}{
			{"code", "search", true},
			{"local", "echo", true},
			{"local", "read_file", false},
			{"docs", "search", false},
			{"nope", "search", false},
		}
		for _, tt := range tests {
			d, ok := r.LookupQualified(tt.source, tt.name)
			if ok != tt.wantOK {
				t.Errorf("LookupQualified(%s, %s) ok = %v, want %v", tt.source, tt.name, ok, tt.wantOK)
				continue
			}
			if ok && d.SourceID != tt.source {
				t.Errorf("LookupQualified(%s, %s) source = %s", tt.source, tt.name, d.SourceID)
			}
		}
	})

	t.Run("connections", func(t *testing.T) {
		t.Parallel()

		if !r.IsConnectionConfigured("broken") || r.IsConnectionConfigured("nope") {
			t.Error("IsConnectionConfigured() mismatch")
		}
		s, ok := r.Connection("broken")
		if !ok || len(s.Tools()) != 0 {
			t.Errorf("Connection(broken) = %v, %v", s, ok)
		}
	})

	t.Run("global tools come from the catalog", func(t *testing.T) {
		t.Parallel()

		if diff := cmp.Diff([]string{"echo", "search"}, tool.Names(r.GlobalTools())); diff != "" {
			t.Errorf("GlobalTools() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRegistry_Empty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		local  *local.Source
		remote Remote
		want   bool
	}{
		{name: "nothing", want: true},
		{name: "configured but failed connection", remote: &fakeRemote{failed: []string{"broken"}}, want: false},
		{
			name:  "local tools only",
			local: local.NewSource([]local.Registration{local.Func("echo", "", noop)}, nil),
			want:  false,
		},
		{name: "remote with no connections", remote: &fakeRemote{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New(nil, tt.local, tt.remote)
			if got := r.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}
