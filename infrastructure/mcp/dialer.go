package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/agent-router/domain/connection"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
)

// SDKDialer opens sessions with the official MCP Go SDK.
type SDKDialer struct {
	// ClientName and ClientVersion identify this client to servers.
	ClientName    string
	ClientVersion string

	// HTTPClient is the base client for network transports.
	HTTPClient *http.Client
}

// NewSDKDialer creates a dialer identifying itself with name and version.
func NewSDKDialer(name, version string) *SDKDialer {
	return &SDKDialer{ClientName: name, ClientVersion: version}
}

// Dial opens a session for cfg. Subprocess connections run the configured
// command over stdio. Network connections try the streamable HTTP
// transport first and fall back to SSE.
func (d *SDKDialer) Dial(ctx context.Context, cfg connection.Config) (Session, error) {
	switch cfg.Transport {
	case connection.TransportSubprocess:
		return d.connect(ctx, &mcpsdk.CommandTransport{Command: command(cfg)})

	case connection.TransportNetwork:
		httpClient := d.httpClient(cfg.Headers)
		s, err := d.connect(ctx, &mcpsdk.StreamableClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClient,
		})
		if err == nil {
			return s, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		logging.Debug().
			Add(logging.Connection(cfg.Name)).
			Add(logging.ErrorField(err)).
			Msg("streamable transport failed, trying sse")

		s, sseErr := d.connect(ctx, &mcpsdk.SSEClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClient,
		})
		if sseErr != nil {
			return nil, errors.Join(err, sseErr)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", connection.ErrUnknownTransport, cfg.Transport)
	}
}

func (d *SDKDialer) connect(ctx context.Context, transport mcpsdk.Transport) (Session, error) {
	name := d.ClientName
	if name == "" {
		name = "agent-router"
	}
	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    name,
		Version: d.ClientVersion,
	}, nil)
	return Connect(ctx, client, transport)
}

func (d *SDKDialer) httpClient(headers map[string]string) *http.Client {
	base := d.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	if len(headers) == 0 {
		return base
	}
	c := *base
	c.Transport = newHeaderRoundTripper(headers, base.Transport)
	return &c
}

// command builds the subprocess for cfg. The child inherits the parent
// environment plus the configured variables.
func command(cfg connection.Config) *exec.Cmd {
	cmd := exec.Command(cfg.Command, cfg.Args...)
	if len(cfg.Env) > 0 {
		keys := make([]string, 0, len(cfg.Env))
		for k := range cfg.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		cmd.Env = os.Environ()
		for _, k := range keys {
			cmd.Env = append(cmd.Env, k+"="+cfg.Env[k])
		}
	}
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}
	return cmd
}

// Connect opens a session on transport with client. ctx bounds the
// connect and initialize handshake only; the transport itself lives until
// the session is closed.
func Connect(ctx context.Context, client *mcpsdk.Client, transport mcpsdk.Transport) (Session, error) {
	dt := &detachedTransport{inner: transport}
	cs, err := client.Connect(ctx, dt, nil)
	if err != nil {
		dt.release()
		return nil, err
	}
	return &sdkSession{session: cs, release: dt.release}, nil
}

// detachedTransport connects inner on a context that outlives the dial.
// SDK transports tie their streams to the connect context, so the dial
// timeout must not reach them once the connection is up.
type detachedTransport struct {
	inner  mcpsdk.Transport
	cancel context.CancelFunc
}

func (t *detachedTransport) Connect(ctx context.Context) (mcpsdk.Connection, error) {
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, cancel)

	conn, err := t.inner.Connect(connCtx)
	if !stop() {
		// The dial context ended while connecting.
		cancel()
		if err == nil {
			_ = conn.Close()
			err = ctx.Err()
		}
		return nil, err
	}
	if err != nil {
		cancel()
		return nil, err
	}
	t.cancel = cancel
	return conn, nil
}

func (t *detachedTransport) release() {
	if t.cancel != nil {
		t.cancel()
	}
}

type sdkSession struct {
	session *mcpsdk.ClientSession
	release func()
}

// ListTools follows pagination cursors until the server has no more tools.
func (s *sdkSession) ListTools(ctx context.Context) ([]*mcpsdk.Tool, error) {
	var (
		tools  []*mcpsdk.Tool
		params = &mcpsdk.ListToolsParams{}
	)
	for {
		res, err := s.session.ListTools(ctx, params)
		if err != nil {
			return nil, err
		}
		tools = append(tools, res.Tools...)
		if res.NextCursor == "" {
			return tools, nil
		}
		params = &mcpsdk.ListToolsParams{Cursor: res.NextCursor}
	}
}

func (s *sdkSession) CallTool(ctx context.Context, name string, arguments json.RawMessage) (*mcpsdk.CallToolResult, error) {
	if len(arguments) == 0 {
		arguments = json.RawMessage(`{}`)
	}
	return s.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: arguments,
	})
}

func (s *sdkSession) Close() error {
	err := s.session.Close()
	s.release()
	return err
}
