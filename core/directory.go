package core

// ServiceDescriptor advertises a capability offered by an actor. Many
// descriptors may share a Type (e.g. every bidder registers "bidder-service").
type ServiceDescriptor struct {
	Type  string  `json:"type"`
	Name  string  `json:"name"`
	Owner Address `json:"owner"`
}

// Directory maps service types to the actors providing them.
// Implementations must be safe for concurrent use. A lookup miss is a normal
// outcome and yields an empty slice, never an error.
type Directory interface {
	Register(desc ServiceDescriptor) error
	Deregister(owner Address) int
	Lookup(serviceType string) []ServiceDescriptor
	Services(owner Address) []ServiceDescriptor
}

// Transport delivers messages to their receivers. Send must not block the
// caller; delivery happens asynchronously.
type Transport interface {
	Send(msg Message)
}
