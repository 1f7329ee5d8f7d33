package guest

import (
	"context"
	"slices"

	"github.com/wippyai/http-adapter/adapter"
)

// respond sends status, headers and body as the invocation's reply. The
// fields and stream handles are dropped once the response holds them.
func respond(ctx context.Context, s *adapter.State, status uint16, headers []adapter.Entry, body []byte) error {
	fields := s.NewFields(ctx, headers)
	resp, err := s.NewOutgoingResponse(ctx, status, fields)
	if err != nil {
		return err
	}
	s.DropFields(ctx, fields)

	if len(body) > 0 {
		out := s.OutgoingResponseWrite(ctx, resp)
		for len(body) > 0 {
			n, err := s.BlockingWrite(ctx, out, body)
			if err != nil {
				return err
			}
			body = body[n:]
		}
		s.DropOutputStream(ctx, out)
	}

	s.SetResponseOutparam(ctx, resp)
	return nil
}

// Factory builds a handler from render properties.
type Factory func(Props) adapter.Handler

var registry = map[string]Factory{
	"hello":  func(Props) adapter.Handler { return Hello() },
	"render": func(p Props) adapter.Handler { return Render(p) },
	"echo":   func(Props) adapter.Handler { return Echo() },
}

// Lookup returns the built-in handler called name.
func Lookup(name string, props Props) (adapter.Handler, bool) {
	f, ok := registry[name]
	if !ok {
		return nil, false
	}
	return f(props), true
}

// Names lists the built-in handlers in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
