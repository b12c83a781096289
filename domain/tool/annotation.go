// Package tool provides the domain model for tools, the sources that offer
// them, and the process-wide catalog of claimed tool names.
package tool

// Annotations carry behavioral hints about a tool. Remote tools report them
// through the tool server; local tools set them at registration.
type Annotations struct {
	// Title is a display name for the tool.
	Title string `json:"title,omitempty"`

	// ReadOnly indicates the tool has no side effects.
	ReadOnly bool `json:"read_only"`

	// Destructive indicates the tool may cause irreversible changes.
	Destructive bool `json:"destructive"`

	// Idempotent indicates multiple calls with same input yield same result.
	Idempotent bool `json:"idempotent"`

	// OpenWorld indicates the tool talks to systems outside the host.
	OpenWorld bool `json:"open_world"`
}

// CanRetry returns true if the tool can be safely retried on failure.
func (a Annotations) CanRetry() bool {
	return a.Idempotent || a.ReadOnly
}
