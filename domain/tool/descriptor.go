package tool

// SourceKind distinguishes in-process tools from tools proxied from a
// remote tool server.
type SourceKind string

const (
	// SourceLocal marks tools registered in-process.
	SourceLocal SourceKind = "local"
	// SourceRemote marks tools discovered on a remote connection.
	SourceRemote SourceKind = "mcp"
)

// LocalSourceID is the source identifier of the in-process tool source.
const LocalSourceID = "local"

// Descriptor is an immutable record of one named tool and where it came from.
type Descriptor struct {
	// Name is the tool name as exposed to the agent.
	Name string `json:"name"`

	// SourceID is the connection name, or LocalSourceID for local tools.
	SourceID string `json:"source_id"`

	// SourceKind is the kind of source that registered the tool.
	SourceKind SourceKind `json:"source_kind"`

	// Tool is the invocable tool.
	Tool Tool `json:"-"`
}

// QualifiedName returns "<source>/<name>".
func (d Descriptor) QualifiedName() string {
	return d.SourceID + "/" + d.Name
}

// IsLocal reports whether the tool was registered in-process.
func (d Descriptor) IsLocal() bool {
	return d.SourceKind == SourceLocal
}

// Source is an ordered, read-only collection of tool descriptors.
type Source interface {
	// ID returns the source identifier.
	ID() string

	// Kind returns the source kind.
	Kind() SourceKind

	// Tools returns every descriptor of the source in registration order.
	Tools() []Descriptor

	// Lookup finds a descriptor by bare tool name.
	Lookup(name string) (Descriptor, bool)
}

// Names returns the names of the given descriptors in order.
func Names(descs []Descriptor) []string {
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	return names
}
