package wasmhost

import (
	"go.uber.org/zap"

	"github.com/wippyai/http-adapter/adapter"
)

// hostFunc is one adapter operation exported to guests.
type hostFunc struct {
	fn     func(c *call)
	module string
	name   string
	sig    Signature
}

// Path returns the "module#name" form used in import errors.
func (f hostFunc) Path() string {
	return f.module + "#" + f.name
}

// hostFuncs lists every function a guest may import.
var hostFuncs = []hostFunc{
	// wasi:http/types: fields
	{module: TypesModule, name: "new-fields", sig: sig(params(entriesT), handleT), fn: newFields},
	{module: TypesModule, name: "fields-get", sig: sig(params(handleT, stringT), stringsT), fn: fieldsGet},
	{module: TypesModule, name: "fields-set", sig: sig(params(handleT, stringT, stringsT)), fn: fieldsSet},
	{module: TypesModule, name: "fields-delete", sig: sig(params(handleT, stringT)), fn: fieldsDelete},
	{module: TypesModule, name: "fields-append", sig: sig(params(handleT, stringT, stringT)), fn: fieldsAppend},
	{module: TypesModule, name: "fields-entries", sig: sig(params(handleT), entriesT), fn: fieldsEntries},
	{module: TypesModule, name: "fields-clone", sig: sig(params(handleT), handleT), fn: fieldsClone},
	{module: TypesModule, name: "drop-fields", sig: sig(params(handleT)), fn: dropFields},

	// wasi:http/types: incoming request
	{module: TypesModule, name: "incoming-request-method", sig: sig(params(handleT), methodT), fn: requestMethod},
	{module: TypesModule, name: "incoming-request-path", sig: sig(params(handleT), stringT), fn: requestPath},
	{module: TypesModule, name: "incoming-request-query", sig: sig(params(handleT), stringT), fn: requestQuery},
	{module: TypesModule, name: "incoming-request-scheme", sig: sig(params(handleT), optionOf(schemeT)), fn: requestScheme},
	{module: TypesModule, name: "incoming-request-authority", sig: sig(params(handleT), stringT), fn: requestAuthority},
	{module: TypesModule, name: "incoming-request-headers", sig: sig(params(handleT), handleT), fn: requestHeaders},
	{module: TypesModule, name: "incoming-request-consume", sig: sig(params(handleT), handleOrErr), fn: requestConsume},
	{module: TypesModule, name: "drop-incoming-request", sig: sig(params(handleT)), fn: dropRequest},

	// wasi:http/types: outgoing response and outparam
	{module: TypesModule, name: "new-outgoing-response", sig: sig(params(u16T, handleT), handleT), fn: newResponse},
	{module: TypesModule, name: "outgoing-response-write", sig: sig(params(handleT), handleOrErr), fn: responseWrite},
	{module: TypesModule, name: "drop-outgoing-response", sig: sig(params(handleT)), fn: dropResponse},
	{module: TypesModule, name: "set-response-outparam", sig: sig(params(resultOf(handleT, errorT)), resultOf(nil, nil)), fn: setOutparam},
	{module: TypesModule, name: "drop-response-outparam", sig: sig(params(handleT)), fn: dropOutparam},

	// wasi:http/types: stream completion
	{module: TypesModule, name: "finish-incoming-stream", sig: sig(params(handleT), optHandleT), fn: finishIncoming},
	{module: TypesModule, name: "finish-outgoing-stream", sig: sig(params(handleT, optHandleT)), fn: finishOutgoing},

	// wasi:http/types: client side, unsupported
	{module: TypesModule, name: "new-outgoing-request", sig: sig(params(methodT, stringT, stringT, optionOf(schemeT), stringT, handleT), handleT), fn: newOutgoingRequest},
	{module: TypesModule, name: "outgoing-request-write", sig: sig(params(handleT), handleOrErr), fn: outgoingRequestWrite},
	{module: TypesModule, name: "drop-outgoing-request", sig: sig(params(handleT)), fn: dropOutgoingRequest},
	{module: TypesModule, name: "incoming-response-status", sig: sig(params(handleT), u16T), fn: incomingResponseStatus},
	{module: TypesModule, name: "incoming-response-headers", sig: sig(params(handleT), handleT), fn: incomingResponseHeaders},
	{module: TypesModule, name: "incoming-response-consume", sig: sig(params(handleT), handleOrErr), fn: incomingResponseConsume},
	{module: TypesModule, name: "drop-incoming-response", sig: sig(params(handleT)), fn: dropIncomingResponse},
	{module: TypesModule, name: "future-incoming-response-get", sig: sig(params(handleT), incomingResultT), fn: futureGet},
	{module: TypesModule, name: "listen-to-future-incoming-response", sig: sig(params(handleT), handleT), fn: futureListen},
	{module: TypesModule, name: "drop-future-incoming-response", sig: sig(params(handleT)), fn: futureDrop},
	{module: OutgoingHandlerModule, name: "handle", sig: sig(params(handleT, requestOptionsT), handleT), fn: outgoingHandle},

	// wasi:io/streams
	{module: StreamsModule, name: "read", sig: sig(params(handleT, u64T), readResultT), fn: read},
	{module: StreamsModule, name: "blocking-read", sig: sig(params(handleT, u64T), readResultT), fn: read},
	{module: StreamsModule, name: "write", sig: sig(params(handleT, bytesT), countResultT), fn: write},
	{module: StreamsModule, name: "blocking-write", sig: sig(params(handleT, bytesT), countResultT), fn: write},
	{module: StreamsModule, name: "drop-input-stream", sig: sig(params(handleT)), fn: dropInputStream},
	{module: StreamsModule, name: "drop-output-stream", sig: sig(params(handleT)), fn: dropOutputStream},
	{module: StreamsModule, name: "skip", sig: sig(params(handleT, u64T), countDoneResultT), fn: skip},
	{module: StreamsModule, name: "blocking-skip", sig: sig(params(handleT, u64T), countDoneResultT), fn: blockingSkip},
	{module: StreamsModule, name: "subscribe-to-input-stream", sig: sig(params(handleT), handleT), fn: subscribeInput},
	{module: StreamsModule, name: "write-zeroes", sig: sig(params(handleT, u64T), countResultT), fn: writeZeroes},
	{module: StreamsModule, name: "blocking-write-zeroes", sig: sig(params(handleT, u64T), countResultT), fn: blockingWriteZeroes},
	{module: StreamsModule, name: "splice", sig: sig(params(handleT, handleT, u64T), countDoneResultT), fn: splice},
	{module: StreamsModule, name: "blocking-splice", sig: sig(params(handleT, handleT, u64T), countDoneResultT), fn: blockingSplice},
	{module: StreamsModule, name: "forward", sig: sig(params(handleT, handleT), countResultT), fn: forward},
	{module: StreamsModule, name: "subscribe-to-output-stream", sig: sig(params(handleT), handleT), fn: subscribeOutput},
}

func newFields(c *call) {
	pairs := c.readPairs(c.u32(0), c.u32(1))
	entries := make([]adapter.Entry, len(pairs))
	for i, p := range pairs {
		entries[i] = adapter.Entry{Name: p[0], Value: p[1]}
	}
	c.ret(uint32(c.s.NewFields(c.ctx, entries)))
}

func fieldsGet(c *call) {
	values := c.s.FieldsGet(c.ctx, adapter.Fields(c.u32(0)), c.str(1))
	c.putStrings(c.u32(3), values)
}

func fieldsSet(c *call) {
	values := c.readStrings(c.u32(3), c.u32(4))
	c.s.FieldsSet(c.ctx, adapter.Fields(c.u32(0)), c.str(1), values)
}

func fieldsDelete(c *call) {
	c.s.FieldsDelete(c.ctx, adapter.Fields(c.u32(0)), c.str(1))
}

func fieldsAppend(c *call) {
	c.s.FieldsAppend(c.ctx, adapter.Fields(c.u32(0)), c.str(1), c.str(3))
}

func fieldsEntries(c *call) {
	entries := c.s.FieldsEntries(c.ctx, adapter.Fields(c.u32(0)))
	pairs := make([][2]string, len(entries))
	for i, e := range entries {
		pairs[i] = [2]string{e.Name, e.Value}
	}
	c.putPairs(c.u32(1), pairs)
}

func fieldsClone(c *call) {
	c.ret(uint32(c.s.FieldsClone(c.ctx, adapter.Fields(c.u32(0)))))
}

func dropFields(c *call) {
	c.s.DropFields(c.ctx, adapter.Fields(c.u32(0)))
}

// requestMethod stores the method variant: discriminant at 0, other's
// string at 4.
func requestMethod(c *call) {
	m, err := c.s.IncomingRequestMethod(c.ctx, adapter.IncomingRequest(c.u32(0)))
	c.check(err)
	ret := c.u32(1)
	c.putU8(ret, uint8(m.Kind))
	if m.Kind == adapter.MethodOther {
		c.putStringAt(ret+4, m.Other)
	}
}

func requestPath(c *call) {
	path, err := c.s.IncomingRequestPath(c.ctx, adapter.IncomingRequest(c.u32(0)))
	c.check(err)
	c.putStringAt(c.u32(1), path)
}

func requestQuery(c *call) {
	query, err := c.s.IncomingRequestQuery(c.ctx, adapter.IncomingRequest(c.u32(0)))
	c.check(err)
	c.putStringAt(c.u32(1), query)
}

// requestScheme stores option<scheme>: option discriminant at 0, scheme
// discriminant at 4, other's string at 8.
func requestScheme(c *call) {
	scheme, ok, err := c.s.IncomingRequestScheme(c.ctx, adapter.IncomingRequest(c.u32(0)))
	c.check(err)
	ret := c.u32(1)
	if !ok {
		c.putU8(ret, 0)
		return
	}
	c.putU8(ret, 1)
	c.putU8(ret+4, uint8(scheme.Kind))
	if scheme.Kind == adapter.SchemeOther {
		c.putStringAt(ret+8, scheme.Other)
	}
}

func requestAuthority(c *call) {
	authority, err := c.s.IncomingRequestAuthority(c.ctx, adapter.IncomingRequest(c.u32(0)))
	c.check(err)
	c.putStringAt(c.u32(1), authority)
}

func requestHeaders(c *call) {
	h, err := c.s.IncomingRequestHeaders(c.ctx, adapter.IncomingRequest(c.u32(0)))
	c.check(err)
	c.ret(uint32(h))
}

func requestConsume(c *call) {
	in, err := c.s.IncomingRequestConsume(c.ctx, adapter.IncomingRequest(c.u32(0)))
	c.check(err)
	c.putHandleResult(c.u32(1), uint32(in))
}

func dropRequest(c *call) {
	c.check(c.s.DropIncomingRequest(c.ctx, adapter.IncomingRequest(c.u32(0))))
}

func newResponse(c *call) {
	r, err := c.s.NewOutgoingResponse(c.ctx, uint16(c.u32(0)), adapter.Fields(c.u32(1)))
	c.check(err)
	c.ret(uint32(r))
}

func responseWrite(c *call) {
	out := c.s.OutgoingResponseWrite(c.ctx, adapter.OutgoingResponse(c.u32(0)))
	c.putHandleResult(c.u32(1), uint32(out))
}

func dropResponse(c *call) {
	c.s.DropOutgoingResponse(c.ctx, adapter.OutgoingResponse(c.u32(0)))
}

// setOutparam takes result<outgoing-response, error> flattened to
// (discriminant, handle or error case, message ptr, message len).
func setOutparam(c *call) {
	if c.u32(0) == 0 {
		c.s.SetResponseOutparam(c.ctx, adapter.OutgoingResponse(c.u32(1)))
	} else {
		c.s.SetResponseOutparamError(c.ctx, adapter.ErrorCode{
			Kind:    adapter.ErrorKind(c.u32(1)),
			Message: c.str(2),
		})
	}
	c.ret(0)
}

func dropOutparam(c *call) {
	c.check(c.s.DropResponseOutparam(c.ctx, adapter.ResponseOutparam(c.u32(0))))
}

func finishIncoming(c *call) {
	_, ok := c.s.FinishIncomingStream(c.ctx, adapter.InputStream(c.u32(0)))
	ret := c.u32(1)
	if !ok {
		c.putU8(ret, 0)
		return
	}
	c.putU8(ret, 1)
	c.putU32(ret+4, 0)
}

func finishOutgoing(c *call) {
	var trailers *adapter.Fields
	if c.u32(1) != 0 {
		t := adapter.Fields(c.u32(2))
		trailers = &t
	}
	c.s.FinishOutgoingStream(c.ctx, adapter.OutputStream(c.u32(0)), trailers)
}

// read stores result<tuple<list<u8>, bool>, stream-error>: discriminant at 0,
// bytes at 4, end-of-stream flag at 12.
func read(c *call) {
	p, eof, err := c.s.Read(c.ctx, adapter.InputStream(c.u32(0)), c.stack[1])
	ret := c.u32(2)
	if err != nil {
		Logger().Debug("stream read failed", zap.Error(err))
		c.putU8(ret, 1)
		return
	}
	c.putU8(ret, 0)
	ptr, n := c.putBytes(p)
	c.putU32(ret+4, ptr)
	c.putU32(ret+8, n)
	c.putU8(ret+12, boolByte(eof))
}

// write stores result<u64, stream-error>: discriminant at 0, count at 8.
func write(c *call) {
	p := c.readBytes(c.u32(1), c.u32(2))
	n, err := c.s.Write(c.ctx, adapter.OutputStream(c.u32(0)), p)
	ret := c.u32(3)
	if err != nil {
		Logger().Debug("stream write failed", zap.Error(err))
		c.putU8(ret, 1)
		return
	}
	c.putU8(ret, 0)
	c.putU64(ret+8, n)
}

func dropInputStream(c *call) {
	c.s.DropInputStream(c.ctx, adapter.InputStream(c.u32(0)))
}

func dropOutputStream(c *call) {
	c.s.DropOutputStream(c.ctx, adapter.OutputStream(c.u32(0)))
}

// putHandleResult stores result<u32>: discriminant at 0, handle at 4.
func (c *call) putHandleResult(addr, h uint32) {
	c.putU8(addr, 0)
	c.putU32(addr+4, h)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
