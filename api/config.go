// Package api provides a local HTTP API for inspecting conversation memory:
// session stats, semantic search, and extracted personal facts.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8089")
	ListenAddr string

	// DefaultBackend is used when a request names no backend.
	DefaultBackend string
}
