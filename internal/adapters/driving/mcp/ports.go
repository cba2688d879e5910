package mcp

import (
	"github.com/forgefit-labs/discovery/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Discovery provides search, recommendation, and generation.
	Discovery driving.DiscoveryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Discovery == nil {
		return ErrMissingDiscoveryService
	}
	return nil
}
