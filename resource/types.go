package resource

import "github.com/wippyai/http-adapter/errors"

// Handle is an opaque reference to a resource in a table.
// Handle 0 is reserved and never allocated by a table.
type Handle uint32

// Kind identifies the resource kind a handle refers to.
type Kind uint8

const (
	KindFields Kind = iota
	KindIncomingRequest
	KindInputStream
	KindOutgoingResponse
	KindOutputStream
	KindResponseOutparam
	KindHostRequest
	KindHostResponse
	KindHostBody
)

var kindNames = [...]string{
	KindFields:           "fields",
	KindIncomingRequest:  "incoming-request",
	KindInputStream:      "input-stream",
	KindOutgoingResponse: "outgoing-response",
	KindOutputStream:     "output-stream",
	KindResponseOutparam: "response-outparam",
	KindHostRequest:      "host-request",
	KindHostResponse:     "host-response",
	KindHostBody:         "host-body",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Phase returns the error phase used for faults on this kind.
func (k Kind) Phase() errors.Phase {
	switch k {
	case KindFields:
		return errors.PhaseFields
	case KindIncomingRequest:
		return errors.PhaseRequest
	case KindInputStream, KindOutputStream:
		return errors.PhaseStream
	case KindOutgoingResponse:
		return errors.PhaseResponse
	case KindResponseOutparam:
		return errors.PhaseOutparam
	default:
		return errors.PhaseHost
	}
}

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	if t == EventDropped {
		return "dropped"
	}
	return "created"
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnResourceEvent calls f(e).
func (f ObserverFunc) OnResourceEvent(e Event) {
	f(e)
}

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}
