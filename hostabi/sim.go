package hostabi

import (
	"strings"
	"sync"

	"github.com/wippyai/http-adapter/resource"
)

// Field is one header line.
type Field struct {
	Name  string
	Value string
}

// Request describes the downstream request a Sim serves.
type Request struct {
	Method string
	URI    string
	Header []Field
	Body   []byte
}

// Reply is the response a Sim delivered downstream.
type Reply struct {
	Header    []Field
	Body      []byte
	Status    uint16
	Streaming bool
}

// Get returns the first value for name, compared case-insensitively.
func (r Reply) Get(name string) string {
	for _, f := range r.Header {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

type simRequest struct {
	req Request
}

type simResponse struct {
	header []Field
	status uint16
}

type simBody struct {
	data []byte
	off  int
}

// Sim is an in-memory legacy host serving one downstream request.
type Sim struct {
	onSend     func(Reply) error
	requests   *resource.Table[*simRequest]
	responses  *resource.Table[*simResponse]
	bodies     *resource.Table[*simBody]
	req        Request
	reply      *Reply
	downstream [2]uint32
	mu         sync.Mutex
	started    bool
}

// SimOption configures a Sim.
type SimOption func(*Sim)

// WithSendHook registers fn to run when the reply is sent downstream. An error
// from fn fails the send.
func WithSendHook(fn func(Reply) error) SimOption {
	return func(s *Sim) {
		s.onSend = fn
	}
}

// WithObserver subscribes o to the host's request, response and body tables.
func WithObserver(o resource.Observer) SimOption {
	return func(s *Sim) {
		s.requests.Subscribe(o)
		s.responses.Subscribe(o)
		s.bodies.Subscribe(o)
	}
}

var _ Host = (*Sim)(nil)

// NewSim creates a host whose downstream request is req.
func NewSim(req Request, opts ...SimOption) *Sim {
	if req.Method == "" {
		req.Method = "GET"
	}
	s := &Sim{
		req:       req,
		requests:  resource.NewTable[*simRequest](resource.KindHostRequest),
		responses: resource.NewTable[*simResponse](resource.KindHostResponse),
		bodies:    resource.NewTable[*simBody](resource.KindHostBody),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply returns the downstream reply and whether one was sent.
func (s *Sim) Reply() (Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reply == nil {
		return Reply{}, false
	}
	return *s.reply, true
}

// DownstreamRequest returns the same request and body on every call.
func (s *Sim) DownstreamRequest() (RequestHandle, BodyHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		req := s.requests.Insert(&simRequest{req: s.req})
		body := s.bodies.Insert(&simBody{data: append([]byte(nil), s.req.Body...)})
		s.downstream = [2]uint32{uint32(req), uint32(body)}
		s.started = true
	}
	return RequestHandle(s.downstream[0]), BodyHandle(s.downstream[1]), nil
}

func (s *Sim) request(op string, h RequestHandle) (*simRequest, error) {
	r, ok := s.requests.Lookup(resource.Handle(h))
	if !ok {
		return nil, fail(op, StatusBadF)
	}
	return r, nil
}

func (s *Sim) RequestMethod(h RequestHandle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.request("method_get", h)
	if err != nil {
		return "", err
	}
	return r.req.Method, nil
}

func (s *Sim) RequestURI(h RequestHandle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.request("uri_get", h)
	if err != nil {
		return "", err
	}
	return r.req.URI, nil
}

func (s *Sim) RequestHeaderNames(h RequestHandle) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.request("header_names_get", h)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(r.req.Header))
	seen := make(map[string]struct{}, len(r.req.Header))
	for _, f := range r.req.Header {
		key := strings.ToLower(f.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, f.Name)
	}
	return names, nil
}

func (s *Sim) RequestHeaderValue(h RequestHandle, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.request("header_value_get", h)
	if err != nil {
		return "", false, err
	}
	for _, f := range r.req.Header {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true, nil
		}
	}
	return "", false, nil
}

func (s *Sim) NewResponse() (ResponseHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ResponseHandle(s.responses.Insert(&simResponse{status: 200})), nil
}

func (s *Sim) SetResponseStatus(h ResponseHandle, status uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.responses.Lookup(resource.Handle(h))
	if !ok {
		return fail("status_set", StatusBadF)
	}
	if status < 100 || status > 999 {
		return fail("status_set", StatusHTTPInvalidStatus)
	}
	r.status = status
	return nil
}

func (s *Sim) AppendResponseHeader(h ResponseHandle, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.responses.Lookup(resource.Handle(h))
	if !ok {
		return fail("header_append", StatusBadF)
	}
	if name == "" {
		return fail("header_append", StatusInvalid)
	}
	r.header = append(r.header, Field{Name: name, Value: value})
	return nil
}

func (s *Sim) NewBody() (BodyHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return BodyHandle(s.bodies.Insert(&simBody{})), nil
}

func (s *Sim) ReadBody(h BodyHandle, limit uint32) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bodies.Lookup(resource.Handle(h))
	if !ok {
		return nil, fail("body_read", StatusBadF)
	}
	n := len(b.data) - b.off
	if uint64(n) > uint64(limit) {
		n = int(limit)
	}
	out := make([]byte, n)
	copy(out, b.data[b.off:])
	b.off += n
	return out, nil
}

func (s *Sim) WriteBody(h BodyHandle, p []byte, end WriteEnd) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bodies.Lookup(resource.Handle(h))
	if !ok {
		return 0, fail("body_write", StatusBadF)
	}
	switch end {
	case WriteEndBack:
		b.data = append(b.data, p...)
	case WriteEndFront:
		b.data = append(append(make([]byte, 0, len(p)+len(b.data)), p...), b.data...)
	default:
		return 0, fail("body_write", StatusInvalid)
	}
	return uint32(len(p)), nil
}

func (s *Sim) SendDownstream(resp ResponseHandle, body BodyHandle, streaming bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "send_downstream"
	r, ok := s.responses.Lookup(resource.Handle(resp))
	if !ok {
		return fail(op, StatusBadF)
	}
	b, ok := s.bodies.Lookup(resource.Handle(body))
	if !ok {
		return fail(op, StatusBadF)
	}
	if s.reply != nil {
		return fail(op, StatusInvalid)
	}

	reply := Reply{
		Status:    r.status,
		Header:    append([]Field(nil), r.header...),
		Body:      append([]byte(nil), b.data[b.off:]...),
		Streaming: streaming,
	}
	if s.onSend != nil {
		if err := s.onSend(reply); err != nil {
			return &StatusError{Op: op, Status: StatusErr, Err: err}
		}
	}

	s.responses.Remove(resource.Handle(resp))
	s.bodies.Remove(resource.Handle(body))
	s.reply = &reply
	return nil
}
