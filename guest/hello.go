package guest

import (
	"context"

	"github.com/wippyai/http-adapter/adapter"
)

// Hello answers every request with 200 text/plain "Hello world!".
func Hello() adapter.Handler {
	return adapter.HandlerFunc(func(ctx context.Context, s *adapter.State, _ adapter.IncomingRequest, _ adapter.ResponseOutparam) error {
		return respond(ctx, s, 200, []adapter.Entry{{Name: "Content-Type", Value: "text/plain"}}, []byte("Hello world!"))
	})
}
