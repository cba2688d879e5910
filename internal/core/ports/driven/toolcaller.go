package driven

import (
	"context"
	"encoding/json"
)

// ToolCall is one request to the remote tool-calling endpoint. The request
// carries a tool name, a JSON schema for the expected arguments, and a
// payload; the response must contain a single tool call whose arguments
// parse as a JSON object matching that schema.
type ToolCall struct {
	// Name is the tool to invoke, e.g. "generate_workout".
	Name string

	// Description tells the model what the tool does.
	Description string

	// Schema is the JSON schema for the tool's arguments.
	Schema map[string]any

	// Payload is the user content accompanying the call.
	Payload string
}

// ToolCaller invokes a remote tool-calling service. This is an optional
// capability: when absent, generation degrades to the deterministic
// fallback path.
//
// Implementations carry their own transport timeout and retry once on
// timeout only; other transport errors surface unretried.
type ToolCaller interface {
	// CallTool performs one tool invocation and returns the tool's
	// arguments as a raw JSON object.
	CallTool(ctx context.Context, call ToolCall) (json.RawMessage, error)

	// ModelName returns the name of the backing model.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
