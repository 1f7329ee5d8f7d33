package hostabi

// RequestHandle references a request object owned by the host.
type RequestHandle uint32

// ResponseHandle references a response object owned by the host.
type ResponseHandle uint32

// BodyHandle references a body buffer owned by the host.
type BodyHandle uint32

// WriteEnd selects which end of a body a write lands on.
type WriteEnd uint8

const (
	WriteEndBack WriteEnd = iota
	WriteEndFront
)

// Host is the legacy single-request HTTP ABI.
//
// One invocation sees exactly one downstream request and may send at most one
// downstream response. All calls are synchronous. Failures are reported as
// *StatusError.
type Host interface {
	// DownstreamRequest returns the request that triggered this invocation
	// and its body.
	DownstreamRequest() (RequestHandle, BodyHandle, error)

	RequestMethod(req RequestHandle) (string, error)
	RequestURI(req RequestHandle) (string, error)

	// RequestHeaderNames returns each header name once, in the order the
	// host received them.
	RequestHeaderNames(req RequestHandle) ([]string, error)

	// RequestHeaderValue returns the first value for name. ok is false when
	// the header is absent.
	RequestHeaderValue(req RequestHandle, name string) (value string, ok bool, err error)

	NewResponse() (ResponseHandle, error)
	SetResponseStatus(resp ResponseHandle, status uint16) error
	AppendResponseHeader(resp ResponseHandle, name, value string) error

	NewBody() (BodyHandle, error)

	// ReadBody returns up to limit bytes. An empty result means the body is
	// exhausted.
	ReadBody(body BodyHandle, limit uint32) ([]byte, error)

	// WriteBody appends p at the given end and returns the bytes accepted.
	WriteBody(body BodyHandle, p []byte, end WriteEnd) (uint32, error)

	// SendDownstream delivers resp with body as the reply to the downstream
	// client. Both handles are consumed.
	SendDownstream(resp ResponseHandle, body BodyHandle, streaming bool) error
}
