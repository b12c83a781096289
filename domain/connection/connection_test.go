package connection_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/agent-router/domain/connection"
)

func TestState_CanTransition(t *testing.T) {
	t.Parallel()

	legal := map[[2]connection.State]bool{
		{connection.StateUninitialized, connection.StateConnecting}: true,
		{connection.StateConnecting, connection.StateConnected}:     true,
		{connection.StateConnecting, connection.StateFailed}:        true,
		{connection.StateConnected, connection.StateDisposed}:       true,
	}

	for _, from := range connection.AllStates() {
		for _, to := range connection.AllStates() {
			want := legal[[2]connection.State{from, to}]
			if got := from.CanTransition(to); got != want {
				t.Errorf("%s.CanTransition(%s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestState_IsTerminal(t *testing.T) {
	t.Parallel()

	for _, s := range connection.AllStates() {
		want := s == connection.StateFailed || s == connection.StateDisposed
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
		if !s.IsValid() {
			t.Errorf("%s.IsValid() = false", s)
		}
	}
	if connection.State("bogus").IsValid() {
		t.Error("IsValid(bogus) = true")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     connection.Config
		wantErr error
	}{
		{
			name: "subprocess ok",
			cfg:  connection.Config{Name: "code", Transport: connection.TransportSubprocess, Command: "code-server"},
		},
		{
			name: "network ok",
			cfg:  connection.Config{Name: "search", Transport: connection.TransportNetwork, URL: "https://tools.example.com/mcp"},
		},
		{
			name:    "missing name",
			cfg:     connection.Config{Transport: connection.TransportSubprocess, Command: "x"},
			wantErr: connection.ErrInvalidConfig,
		},
		{
			name:    "reserved name",
			cfg:     connection.Config{Name: "local", Transport: connection.TransportSubprocess, Command: "x"},
			wantErr: connection.ErrReservedName,
		},
		{
			name:    "slash in name",
			cfg:     connection.Config{Name: "a/b", Transport: connection.TransportSubprocess, Command: "x"},
			wantErr: connection.ErrInvalidConfig,
		},
		{
			name:    "subprocess without command",
			cfg:     connection.Config{Name: "code", Transport: connection.TransportSubprocess},
			wantErr: connection.ErrInvalidConfig,
		},
		{
			name:    "network with relative url",
			cfg:     connection.Config{Name: "search", Transport: connection.TransportNetwork, URL: "/mcp"},
			wantErr: connection.ErrInvalidConfig,
		},
		{
			name:    "unknown transport",
			cfg:     connection.Config{Name: "x", Transport: "carrier-pigeon"},
			wantErr: connection.ErrUnknownTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("refused")
	err := &connection.Error{Connection: "code", Op: "connect", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if err.Error() != `connection "code": connect: refused` {
		t.Errorf("Error() = %q", err.Error())
	}
}
