package adapter

import (
	"context"

	"github.com/wippyai/http-adapter/hostabi"
)

// Handler serves an incoming request by building a response and setting it on
// the outparam.
type Handler interface {
	Handle(ctx context.Context, s *State, req IncomingRequest, out ResponseOutparam) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, s *State, req IncomingRequest, out ResponseOutparam) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, s *State, req IncomingRequest, out ResponseOutparam) error {
	return f(ctx, s, req, out)
}

// Invoke serves the host's downstream request with h on a fresh State.
func Invoke(ctx context.Context, host hostabi.Host, h Handler, opts ...Option) error {
	return NewState(host, opts...).Serve(ctx, h)
}
