package adapter

import (
	"context"

	"github.com/wippyai/http-adapter/errors"
)

// Interface surface with no legacy host equivalent. The host cannot originate
// requests and has no readiness notification, so every call returns an
// unsupported error.

func unsupported(phase errors.Phase, op string) *errors.Error {
	return errors.Unsupported(phase, op)
}

// NewOutgoingRequest is unsupported.
func (s *State) NewOutgoingRequest(_ context.Context, _ Method, _, _ string, _ *Scheme, _ string, _ Fields) (OutgoingRequest, error) {
	return 0, unsupported(errors.PhaseClient, "new-outgoing-request")
}

// OutgoingRequestWrite is unsupported.
func (s *State) OutgoingRequestWrite(_ context.Context, _ OutgoingRequest) (OutputStream, error) {
	return 0, unsupported(errors.PhaseClient, "outgoing-request-write")
}

// DropOutgoingRequest is unsupported.
func (s *State) DropOutgoingRequest(_ context.Context, _ OutgoingRequest) error {
	return unsupported(errors.PhaseClient, "drop-outgoing-request")
}

// OutgoingHandle is unsupported.
// handle: func(request: outgoing-request, options: option<request-options>) -> future-incoming-response
func (s *State) OutgoingHandle(_ context.Context, _ OutgoingRequest) (FutureIncomingResponse, error) {
	return 0, unsupported(errors.PhaseClient, "handle")
}

// IncomingResponseStatus is unsupported.
func (s *State) IncomingResponseStatus(_ context.Context, _ IncomingResponse) (uint16, error) {
	return 0, unsupported(errors.PhaseClient, "incoming-response-status")
}

// IncomingResponseHeaders is unsupported.
func (s *State) IncomingResponseHeaders(_ context.Context, _ IncomingResponse) (Fields, error) {
	return 0, unsupported(errors.PhaseClient, "incoming-response-headers")
}

// IncomingResponseConsume is unsupported.
func (s *State) IncomingResponseConsume(_ context.Context, _ IncomingResponse) (InputStream, error) {
	return 0, unsupported(errors.PhaseClient, "incoming-response-consume")
}

// DropIncomingResponse is unsupported.
func (s *State) DropIncomingResponse(_ context.Context, _ IncomingResponse) error {
	return unsupported(errors.PhaseClient, "drop-incoming-response")
}

// FutureIncomingResponseGet is unsupported.
func (s *State) FutureIncomingResponseGet(_ context.Context, _ FutureIncomingResponse) (IncomingResponse, error) {
	return 0, unsupported(errors.PhaseClient, "future-incoming-response-get")
}

// ListenToFutureIncomingResponse is unsupported.
func (s *State) ListenToFutureIncomingResponse(_ context.Context, _ FutureIncomingResponse) (Pollable, error) {
	return 0, unsupported(errors.PhaseClient, "listen-to-future-incoming-response")
}

// DropFutureIncomingResponse is unsupported.
func (s *State) DropFutureIncomingResponse(_ context.Context, _ FutureIncomingResponse) error {
	return unsupported(errors.PhaseClient, "drop-future-incoming-response")
}

// Skip is unsupported.
func (s *State) Skip(_ context.Context, _ InputStream, _ uint64) (uint64, bool, error) {
	return 0, false, unsupported(errors.PhaseStream, "skip")
}

// BlockingSkip is unsupported.
func (s *State) BlockingSkip(_ context.Context, _ InputStream, _ uint64) (uint64, bool, error) {
	return 0, false, unsupported(errors.PhaseStream, "blocking-skip")
}

// SubscribeToInputStream is unsupported.
func (s *State) SubscribeToInputStream(_ context.Context, _ InputStream) (Pollable, error) {
	return 0, unsupported(errors.PhaseStream, "subscribe-to-input-stream")
}

// WriteZeroes is unsupported.
func (s *State) WriteZeroes(_ context.Context, _ OutputStream, _ uint64) (uint64, error) {
	return 0, unsupported(errors.PhaseStream, "write-zeroes")
}

// BlockingWriteZeroes is unsupported.
func (s *State) BlockingWriteZeroes(_ context.Context, _ OutputStream, _ uint64) (uint64, error) {
	return 0, unsupported(errors.PhaseStream, "blocking-write-zeroes")
}

// Splice is unsupported.
func (s *State) Splice(_ context.Context, _ OutputStream, _ InputStream, _ uint64) (uint64, bool, error) {
	return 0, false, unsupported(errors.PhaseStream, "splice")
}

// BlockingSplice is unsupported.
func (s *State) BlockingSplice(_ context.Context, _ OutputStream, _ InputStream, _ uint64) (uint64, bool, error) {
	return 0, false, unsupported(errors.PhaseStream, "blocking-splice")
}

// Forward is unsupported.
func (s *State) Forward(_ context.Context, _ OutputStream, _ InputStream) (uint64, error) {
	return 0, unsupported(errors.PhaseStream, "forward")
}

// SubscribeToOutputStream is unsupported.
func (s *State) SubscribeToOutputStream(_ context.Context, _ OutputStream) (Pollable, error) {
	return 0, unsupported(errors.PhaseStream, "subscribe-to-output-stream")
}
