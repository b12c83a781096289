package mcp

import (
	"sync"

	"github.com/felixgeelhaar/agent-router/domain/connection"
	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/statemachine"
)

// remoteSource is one configured connection. Its tools are visible only
// while the connection is connected.
type remoteSource struct {
	config    connection.Config
	lifecycle *statemachine.Interpreter

	mu      sync.RWMutex
	session Session
	tools   []tool.Descriptor
	byName  map[string]int
	err     error
}

var _ tool.Source = (*remoteSource)(nil)

func (s *remoteSource) ID() string { return s.config.Name }

func (s *remoteSource) Kind() tool.SourceKind { return tool.SourceRemote }

func (s *remoteSource) State() connection.State { return s.lifecycle.State() }

// Tools returns the connection's tools in server order, including tools
// whose names were already claimed globally by another source.
func (s *remoteSource) Tools() []tool.Descriptor {
	if s.State() != connection.StateConnected {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tool.Descriptor, len(s.tools))
	copy(out, s.tools)
	return out
}

func (s *remoteSource) Lookup(name string) (tool.Descriptor, bool) {
	if s.State() != connection.StateConnected {
		return tool.Descriptor{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byName[name]
	if !ok {
		return tool.Descriptor{}, false
	}
	return s.tools[i], true
}

func (s *remoteSource) info() connection.Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := connection.Info{
		Name:      s.config.Name,
		Transport: s.config.Transport,
		State:     s.lifecycle.State(),
	}
	if info.State == connection.StateConnected {
		info.ToolCount = len(s.tools)
	}
	if s.err != nil {
		info.Error = s.err.Error()
	}
	return info
}

func (s *remoteSource) connect(session Session, tools []tool.Descriptor, byName map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.tools = tools
	s.byName = byName
}

func (s *remoteSource) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// dispose clears the tool maps and hands back the session for closing.
func (s *remoteSource) dispose() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.session
	s.session = nil
	s.tools = nil
	s.byName = nil
	return session
}
