package mcp

import "errors"

// ErrMissingDiscoveryService is returned when the server is constructed
// without its discovery port.
var ErrMissingDiscoveryService = errors.New("mcp: discovery service is required")
