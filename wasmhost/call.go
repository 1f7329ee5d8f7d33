package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/http-adapter/adapter"
	"github.com/wippyai/http-adapter/errors"
)

type invocationKey struct{}

// invocation carries the State of the running guest call to host functions.
type invocation struct {
	state *adapter.State
	log   *zap.Logger
	err   *errors.Error
}

func withInvocation(ctx context.Context, inv *invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

func invocationFrom(ctx context.Context) *invocation {
	inv, _ := ctx.Value(invocationKey{}).(*invocation)
	return inv
}

// record keeps the first error that trapped the guest and re-panics so
// wazero unwinds the guest stack.
func (inv *invocation) record(fn string) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*errors.Error); ok && inv.err == nil {
		if e.Op == "" {
			e.Op = fn
		}
		inv.err = e
		inv.log.Debug("guest trapped", zap.String("func", fn), zap.Error(e))
	}
	panic(r)
}

// call is one host function invocation: decoded stack slots plus access to
// guest memory.
type call struct {
	ctx   context.Context
	s     *adapter.State
	stack []uint64
	lowerer
}

func (c *call) u32(i int) uint32 {
	return api.DecodeU32(c.stack[i])
}

// str reads a string passed as (ptr, len) in slots i and i+1.
func (c *call) str(i int) string {
	return c.readString(c.u32(i), c.u32(i+1))
}

func (c *call) ret(v uint32) {
	c.stack[0] = api.EncodeU32(v)
}

// check traps on err. Operations without an error channel in the interface
// surface host failures this way.
func (c *call) check(err error) {
	if err == nil {
		return
	}
	if e, ok := err.(*errors.Error); ok {
		errors.Raise(e)
	}
	errors.Raise(errors.Wrap(errors.PhaseBind, errors.KindHostFailure, err, "adapter call"))
}
