// Package agentrouter provides the version information for agent-router.
package agentrouter

// Version is the current version of agent-router.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
