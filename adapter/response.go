package adapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/resource"
)

// NewOutgoingResponse builds a host response with status and a copy of every
// entry in headers, backed by a fresh host body.
// new-outgoing-response: func(status-code: u16, headers: headers) -> outgoing-response
func (s *State) NewOutgoingResponse(_ context.Context, status uint16, headers Fields) (OutgoingResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "new-outgoing-response"
	entries := s.fields.Get(resource.Handle(headers))

	resp, err := s.host.NewResponse()
	if err != nil {
		return 0, errors.HostFailure(errors.PhaseResponse, op, err)
	}
	if err := s.host.SetResponseStatus(resp, status); err != nil {
		return 0, errors.HostFailure(errors.PhaseResponse, op, err)
	}
	for _, e := range entries {
		if err := s.host.AppendResponseHeader(resp, e.Name, e.Value); err != nil {
			return 0, errors.HostFailure(errors.PhaseResponse, op, err)
		}
	}
	body, err := s.host.NewBody()
	if err != nil {
		return 0, errors.HostFailure(errors.PhaseResponse, op, err)
	}

	return OutgoingResponse(s.responses.Insert(outgoingResponse{resp: resp, body: body})), nil
}

// OutgoingResponseWrite opens a stream over the response body. Calling it
// twice yields two streams over the same body.
// outgoing-response-write: func(response: outgoing-response) -> result<outgoing-stream>
func (s *State) OutgoingResponseWrite(_ context.Context, r OutgoingResponse) OutputStream {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.responses.Get(resource.Handle(r))
	return OutputStream(s.outputs.Insert(resp.body))
}

// DropOutgoingResponse removes r.
// drop-outgoing-response: func(response: outgoing-response)
func (s *State) DropOutgoingResponse(_ context.Context, r OutgoingResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses.Remove(resource.Handle(r))
}

// SetResponseOutparam designates r as the downstream reply, replacing any
// earlier choice.
// set-response-outparam: func(response: result<outgoing-response, error>) -> result
func (s *State) SetResponseOutparam(_ context.Context, r OutgoingResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkOutparamLocked("set-response-outparam", DownstreamOutparam)
	s.responses.Get(resource.Handle(r))
	s.outparam.response = r
	s.outparam.set = true
}

// SetResponseOutparamError records that the handler failed. It clears the slot
// so finalization sends nothing; no error response is synthesized.
func (s *State) SetResponseOutparamError(_ context.Context, code ErrorCode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkOutparamLocked("set-response-outparam", DownstreamOutparam)
	s.outparam.response = 0
	s.outparam.set = false
	s.log.Warn("handler reported error instead of response", zap.String("code", code.Error()))
}

// DropResponseOutparam finalizes the outparam. If a response was set, the host
// sends it downstream. The slot is empty afterwards and any further outparam
// operation faults.
// drop-response-outparam: func(response: response-outparam)
func (s *State) DropResponseOutparam(_ context.Context, out ResponseOutparam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "drop-response-outparam"
	s.checkOutparamLocked(op, out)
	s.outparam.finalized = true

	if !s.outparam.set {
		s.log.Debug("outparam finalized without response")
		return nil
	}

	h := s.outparam.response
	s.outparam.response = 0
	s.outparam.set = false

	resp := s.responses.Get(resource.Handle(h))
	if err := s.host.SendDownstream(resp.resp, resp.body, false); err != nil {
		return errors.HostFailure(errors.PhaseOutparam, op, err)
	}
	s.log.Info("response sent downstream", zap.Uint32("response", uint32(h)))
	return nil
}

func (s *State) checkOutparamLocked(op string, out ResponseOutparam) {
	name := resource.KindResponseOutparam.String()
	if out != DownstreamOutparam {
		e := errors.IdentityMismatch(errors.PhaseOutparam, name, uint32(out), uint32(DownstreamOutparam))
		e.Op = op
		errors.Raise(e)
	}
	if s.outparam.finalized {
		e := errors.UnknownHandle(errors.PhaseOutparam, name, uint32(out))
		e.Op = op
		e.Detail = "already finalized"
		errors.Raise(e)
	}
}

// Finalized reports whether the outparam has been finalized.
func (s *State) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.outparam.finalized
}
