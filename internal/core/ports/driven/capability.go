package driven

// CapabilitySignal reports whether the live generation path may be
// attempted at all. Hosts typically wire reachability plus credential
// presence into this signal.
type CapabilitySignal interface {
	// LiveGenerationAvailable reports whether live tool calls may be made.
	LiveGenerationAvailable() bool
}

// CapabilityFunc adapts a plain function to a CapabilitySignal.
type CapabilityFunc func() bool

// LiveGenerationAvailable implements CapabilitySignal.
func (f CapabilityFunc) LiveGenerationAvailable() bool { return f() }
