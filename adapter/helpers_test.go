package adapter

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/hostabi"
)

func newTestState(t *testing.T, req hostabi.Request) (*State, *hostabi.Sim) {
	t.Helper()
	host := hostabi.NewSim(req)
	return NewState(host), host
}

// expectFault runs fn and returns the fault it raised.
func expectFault(t *testing.T, fn func()) *errors.Error {
	t.Helper()

	var err error
	func() {
		defer errors.Catch(&err)
		fn()
	}()

	if err == nil {
		t.Fatal("expected fault, got none")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("fault is %T, want *errors.Error", err)
	}
	if !errors.IsFault(e) {
		t.Fatalf("error %v is not a fault", e)
	}
	return e
}

var ctx = context.Background()
