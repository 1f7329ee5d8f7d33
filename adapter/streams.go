package adapter

import (
	"context"
	"math"

	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/hostabi"
	"github.com/wippyai/http-adapter/resource"
)

// Byte stream operations. Host failures are returned as stream errors
// (phase stream, kind host_failure).

// Read returns up to n bytes from the request body. eof is true when nothing
// was read.
// read: func(this: input-stream, len: u64) -> result<tuple<list<u8>, bool>, stream-error>
func (s *State) Read(_ context.Context, in InputStream, n uint64) (p []byte, eof bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := s.inputs.Get(resource.Handle(in))
	if n > math.MaxUint32 {
		n = math.MaxUint32
	}
	p, err = s.host.ReadBody(body, uint32(n))
	if err != nil {
		return nil, false, errors.HostFailure(errors.PhaseStream, "read", err)
	}
	return p, len(p) == 0, nil
}

// BlockingRead is Read. Host reads never block.
func (s *State) BlockingRead(ctx context.Context, in InputStream, n uint64) ([]byte, bool, error) {
	return s.Read(ctx, in, n)
}

// Write appends p to the response body and returns the bytes accepted.
// write: func(this: output-stream, buf: list<u8>) -> result<u64, stream-error>
func (s *State) Write(_ context.Context, out OutputStream, p []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := s.outputs.Get(resource.Handle(out))
	n, err := s.host.WriteBody(body, p, hostabi.WriteEndBack)
	if err != nil {
		return 0, errors.HostFailure(errors.PhaseStream, "write", err)
	}
	return uint64(n), nil
}

// BlockingWrite is Write. Host writes never block.
func (s *State) BlockingWrite(ctx context.Context, out OutputStream, p []byte) (uint64, error) {
	return s.Write(ctx, out, p)
}

// DropInputStream removes in.
// drop-input-stream: func(this: input-stream)
func (s *State) DropInputStream(_ context.Context, in InputStream) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inputs.Remove(resource.Handle(in))
}

// DropOutputStream removes out.
// drop-output-stream: func(this: output-stream)
func (s *State) DropOutputStream(_ context.Context, out OutputStream) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outputs.Remove(resource.Handle(out))
}

// FinishIncomingStream removes in. Trailers are never available.
// finish-incoming-stream: func(s: incoming-stream) -> option<future-trailers>
func (s *State) FinishIncomingStream(_ context.Context, in InputStream) (FutureTrailers, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inputs.Remove(resource.Handle(in))
	return 0, false
}

// FinishOutgoingStream checks out and ignores trailers. The stream stays open.
// finish-outgoing-stream: func(s: outgoing-stream, trailers: option<trailers>)
func (s *State) FinishOutgoingStream(_ context.Context, out OutputStream, _ *Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outputs.Get(resource.Handle(out))
}
