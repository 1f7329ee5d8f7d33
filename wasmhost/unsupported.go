package wasmhost

import "github.com/wippyai/http-adapter/adapter"

// Client-side and readiness operations have no host equivalent. Each handler
// forwards to the adapter, which reports the operation unsupported, and the
// guest traps.

func newOutgoingRequest(c *call) {
	_, err := c.s.NewOutgoingRequest(c.ctx, adapter.Method{}, "", "", nil, "", 0)
	c.check(err)
}

func outgoingRequestWrite(c *call) {
	_, err := c.s.OutgoingRequestWrite(c.ctx, adapter.OutgoingRequest(c.u32(0)))
	c.check(err)
}

func dropOutgoingRequest(c *call) {
	c.check(c.s.DropOutgoingRequest(c.ctx, adapter.OutgoingRequest(c.u32(0))))
}

func outgoingHandle(c *call) {
	_, err := c.s.OutgoingHandle(c.ctx, adapter.OutgoingRequest(c.u32(0)))
	c.check(err)
}

func incomingResponseStatus(c *call) {
	_, err := c.s.IncomingResponseStatus(c.ctx, adapter.IncomingResponse(c.u32(0)))
	c.check(err)
}

func incomingResponseHeaders(c *call) {
	_, err := c.s.IncomingResponseHeaders(c.ctx, adapter.IncomingResponse(c.u32(0)))
	c.check(err)
}

func incomingResponseConsume(c *call) {
	_, err := c.s.IncomingResponseConsume(c.ctx, adapter.IncomingResponse(c.u32(0)))
	c.check(err)
}

func dropIncomingResponse(c *call) {
	c.check(c.s.DropIncomingResponse(c.ctx, adapter.IncomingResponse(c.u32(0))))
}

func futureGet(c *call) {
	_, err := c.s.FutureIncomingResponseGet(c.ctx, adapter.FutureIncomingResponse(c.u32(0)))
	c.check(err)
}

func futureListen(c *call) {
	_, err := c.s.ListenToFutureIncomingResponse(c.ctx, adapter.FutureIncomingResponse(c.u32(0)))
	c.check(err)
}

func futureDrop(c *call) {
	c.check(c.s.DropFutureIncomingResponse(c.ctx, adapter.FutureIncomingResponse(c.u32(0))))
}

func skip(c *call) {
	_, _, err := c.s.Skip(c.ctx, adapter.InputStream(c.u32(0)), c.stack[1])
	c.check(err)
}

func blockingSkip(c *call) {
	_, _, err := c.s.BlockingSkip(c.ctx, adapter.InputStream(c.u32(0)), c.stack[1])
	c.check(err)
}

func subscribeInput(c *call) {
	_, err := c.s.SubscribeToInputStream(c.ctx, adapter.InputStream(c.u32(0)))
	c.check(err)
}

func writeZeroes(c *call) {
	_, err := c.s.WriteZeroes(c.ctx, adapter.OutputStream(c.u32(0)), c.stack[1])
	c.check(err)
}

func blockingWriteZeroes(c *call) {
	_, err := c.s.BlockingWriteZeroes(c.ctx, adapter.OutputStream(c.u32(0)), c.stack[1])
	c.check(err)
}

func splice(c *call) {
	_, _, err := c.s.Splice(c.ctx, adapter.OutputStream(c.u32(0)), adapter.InputStream(c.u32(1)), c.stack[2])
	c.check(err)
}

func blockingSplice(c *call) {
	_, _, err := c.s.BlockingSplice(c.ctx, adapter.OutputStream(c.u32(0)), adapter.InputStream(c.u32(1)), c.stack[2])
	c.check(err)
}

func forward(c *call) {
	_, err := c.s.Forward(c.ctx, adapter.OutputStream(c.u32(0)), adapter.InputStream(c.u32(1)))
	c.check(err)
}

func subscribeOutput(c *call) {
	_, err := c.s.SubscribeToOutputStream(c.ctx, adapter.OutputStream(c.u32(0)))
	c.check(err)
}
