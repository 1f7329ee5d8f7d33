package adapter

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/hostabi"
	"github.com/wippyai/http-adapter/resource"
)

type incomingRequest struct {
	req  hostabi.RequestHandle
	body hostabi.BodyHandle
}

type outgoingResponse struct {
	resp hostabi.ResponseHandle
	body hostabi.BodyHandle
}

// outparamSlot is the single downstream reply slot. It is finalized once.
type outparamSlot struct {
	response  OutgoingResponse
	set       bool
	finalized bool
}

// State is the handle table for one invocation.
//
// Every operation takes the state lock for its whole duration, host calls
// included. Contract violations (unknown handles, a request or outparam that
// is not the invocation's singleton) panic with an *errors.Error; use Serve or
// errors.Catch at the boundary.
type State struct {
	host      hostabi.Host
	log       *zap.Logger
	fields    *resource.Table[[]Entry]
	inputs    *resource.Table[hostabi.BodyHandle]
	responses *resource.Table[outgoingResponse]
	outputs   *resource.Table[hostabi.BodyHandle]
	incoming  *incomingRequest
	outparam  outparamSlot
	mu        sync.Mutex
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger used for lifecycle and send events.
func WithLogger(l *zap.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// WithObserver subscribes o to every handle table of the state. o runs with
// the state lock held and must not call back into the state.
func WithObserver(o resource.Observer) Option {
	return func(s *State) {
		s.subscribe(o)
	}
}

// NewState creates an empty handle table over host.
func NewState(host hostabi.Host, opts ...Option) *State {
	s := &State{
		host:      host,
		log:       Logger(),
		fields:    resource.NewTable[[]Entry](resource.KindFields),
		inputs:    resource.NewTable[hostabi.BodyHandle](resource.KindInputStream),
		responses: resource.NewTable[outgoingResponse](resource.KindOutgoingResponse),
		outputs:   resource.NewTable[hostabi.BodyHandle](resource.KindOutputStream),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.subscribe(resource.ObserverFunc(s.logEvent))
	return s
}

func (s *State) subscribe(o resource.Observer) {
	s.fields.Subscribe(o)
	s.inputs.Subscribe(o)
	s.responses.Subscribe(o)
	s.outputs.Subscribe(o)
}

func (s *State) logEvent(e resource.Event) {
	if ce := s.log.Check(zap.DebugLevel, "handle "+e.Type.String()); ce != nil {
		ce.Write(
			zap.Stringer("kind", e.Kind),
			zap.Uint32("handle", uint32(e.Handle)),
		)
	}
}

// Host returns the host the state translates to.
func (s *State) Host() hostabi.Host {
	return s.host
}

// Live reports the number of live handles per kind.
func (s *State) Live() map[resource.Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[resource.Kind]int{
		resource.KindFields:           s.fields.Len(),
		resource.KindInputStream:      s.inputs.Len(),
		resource.KindOutgoingResponse: s.responses.Len(),
		resource.KindOutputStream:     s.outputs.Len(),
	}
}

// IncomingRequest returns the invocation's request, fetching it from the host
// on first use.
func (s *State) IncomingRequest(_ context.Context) (IncomingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := s.incomingLocked()
	if err != nil {
		return 0, err
	}
	return IncomingRequest(in.req), nil
}

func (s *State) incomingLocked() (*incomingRequest, error) {
	if s.incoming == nil {
		req, body, err := s.host.DownstreamRequest()
		if err != nil {
			return nil, errors.HostFailure(errors.PhaseRequest, "downstream-request", err)
		}
		s.incoming = &incomingRequest{req: req, body: body}
		s.log.Debug("incoming request bound",
			zap.Uint32("request", uint32(req)),
			zap.Uint32("body", uint32(body)))
	}
	return s.incoming, nil
}

// requestLocked resolves h to the singleton request. Any other value faults.
func (s *State) requestLocked(op string, h IncomingRequest) (*incomingRequest, error) {
	in, err := s.incomingLocked()
	if err != nil {
		return nil, err
	}
	if hostabi.RequestHandle(h) != in.req {
		e := errors.IdentityMismatch(errors.PhaseRequest, resource.KindIncomingRequest.String(), uint32(h), uint32(in.req))
		e.Op = op
		errors.Raise(e)
	}
	return in, nil
}

// Serve runs one invocation: it fetches the downstream request, passes it to h
// with the downstream outparam and finalizes the outparam unless the handler
// already did. A handler error skips finalization. Faults are returned as
// errors.
func (s *State) Serve(ctx context.Context, h Handler) (err error) {
	defer errors.Catch(&err)

	req, err := s.IncomingRequest(ctx)
	if err != nil {
		return err
	}
	if err := h.Handle(ctx, s, req, DownstreamOutparam); err != nil {
		return err
	}
	if s.Finalized() {
		return nil
	}
	return s.DropResponseOutparam(ctx, DownstreamOutparam)
}
