package wasmhost

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/http-adapter/adapter"
	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/hostabi"
)

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

func TestSignature_Lower(t *testing.T) {
	tests := []struct {
		module  string
		name    string
		params  []api.ValueType
		results []api.ValueType
	}{
		{TypesModule, "new-fields", []api.ValueType{i32, i32}, []api.ValueType{i32}},
		{TypesModule, "fields-get", []api.ValueType{i32, i32, i32, i32}, nil},
		{TypesModule, "fields-append", []api.ValueType{i32, i32, i32, i32, i32}, nil},
		{TypesModule, "incoming-request-method", []api.ValueType{i32, i32}, nil},
		{TypesModule, "incoming-request-headers", []api.ValueType{i32}, []api.ValueType{i32}},
		{TypesModule, "new-outgoing-response", []api.ValueType{i32, i32}, []api.ValueType{i32}},
		{TypesModule, "outgoing-response-write", []api.ValueType{i32, i32}, nil},
		{TypesModule, "set-response-outparam", []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}},
		{TypesModule, "finish-outgoing-stream", []api.ValueType{i32, i32, i32}, nil},
		{TypesModule, "new-outgoing-request", []api.ValueType{i32, i32, i32, i32, i32, i32, i32, i32, i32, i32, i32, i32, i32, i32}, []api.ValueType{i32}},
		{OutgoingHandlerModule, "handle", []api.ValueType{i32, i32, i32, i32, i32, i32, i32, i32}, []api.ValueType{i32}},
		{StreamsModule, "read", []api.ValueType{i32, i64, i32}, nil},
		{StreamsModule, "write", []api.ValueType{i32, i32, i32, i32}, nil},
		{StreamsModule, "splice", []api.ValueType{i32, i32, i64, i32}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := lookup(tt.module, tt.name)
			require.True(t, ok)
			params, results := f.sig.Lower()
			assert.Equal(t, tt.params, params)
			assert.Equal(t, tt.results, results)
		})
	}
}

func TestFunctions_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range Functions() {
		path := f.Module + "#" + f.Name
		assert.False(t, seen[path], "duplicate %s", path)
		seen[path] = true
		assert.Contains(t, Modules(), f.Module)
	}
}

// helloGuest builds a response with one header and body "Hello world!".
func helloGuest() []byte {
	var b wasmBuilder
	newFields := b.importAdapter(TypesModule, "new-fields")
	appendField := b.importAdapter(TypesModule, "fields-append")
	newResponse := b.importAdapter(TypesModule, "new-outgoing-response")
	responseWrite := b.importAdapter(TypesModule, "outgoing-response-write")
	setOutparam := b.importAdapter(TypesModule, "set-response-outparam")
	write := b.importAdapter(StreamsModule, "write")

	b.segment(16, []byte("Content-Typetext/plainHello world!"))
	handle := b.function([]api.ValueType{i32, i32}, nil, 2,
		i32c(0), i32c(0), ins(opCall, newFields), ins(opLocalSet, 2),
		ins(opLocalGet, 2), i32c(16), i32c(12), i32c(28), i32c(10), ins(opCall, appendField),
		i32c(200), ins(opLocalGet, 2), ins(opCall, newResponse), ins(opLocalSet, 3),
		ins(opLocalGet, 3), i32c(64), ins(opCall, responseWrite),
		load(68), i32c(38), i32c(12), i32c(80), ins(opCall, write),
		i32c(0), ins(opLocalGet, 3), i32c(0), i32c(0), ins(opCall, setOutparam), []byte{opDrop},
	)
	b.export(HandleExport, handle)
	return b.bytes()
}

// pathGuest echoes the request path as the response body.
func pathGuest() []byte {
	var b wasmBuilder
	newFields := b.importAdapter(TypesModule, "new-fields")
	newResponse := b.importAdapter(TypesModule, "new-outgoing-response")
	responseWrite := b.importAdapter(TypesModule, "outgoing-response-write")
	setOutparam := b.importAdapter(TypesModule, "set-response-outparam")
	path := b.importAdapter(TypesModule, "incoming-request-path")
	write := b.importAdapter(StreamsModule, "write")
	b.withRealloc()

	handle := b.function([]api.ValueType{i32, i32}, nil, 1,
		i32c(200), i32c(0), i32c(0), ins(opCall, newFields), ins(opCall, newResponse), ins(opLocalSet, 2),
		ins(opLocalGet, 2), i32c(80), ins(opCall, responseWrite),
		ins(opLocalGet, 0), i32c(64), ins(opCall, path),
		load(84), load(64), load(68), i32c(96), ins(opCall, write),
		i32c(0), ins(opLocalGet, 2), i32c(0), i32c(0), ins(opCall, setOutparam), []byte{opDrop},
	)
	b.export(HandleExport, handle)
	return b.bytes()
}

// callGuest imports one adapter function and calls it with constant args.
func callGuest(module, fn string, args ...[]byte) []byte {
	var b wasmBuilder
	f := b.importAdapter(module, fn)
	f2, _ := lookup(module, fn)
	_, results := f2.sig.Lower()

	code := append(args, ins(opCall, f))
	if len(results) > 0 {
		code = append(code, []byte{opDrop})
	}
	handle := b.function([]api.ValueType{i32, i32}, nil, 0, code...)
	b.export(HandleExport, handle)
	return b.bytes()
}

func newTestGuest(t *testing.T, wasm []byte) *Guest {
	t.Helper()
	ctx := context.Background()
	g, err := NewGuest(ctx, wasm)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close(ctx) })
	return g
}

func TestGuest_HelloWorld(t *testing.T) {
	ctx := context.Background()
	g := newTestGuest(t, helloGuest())
	host := hostabi.NewSim(hostabi.Request{URI: "http://example.com/"})

	require.NoError(t, adapter.Invoke(ctx, host, g))

	reply, sent := host.Reply()
	require.True(t, sent)
	assert.Equal(t, uint16(200), reply.Status)
	assert.Equal(t, "text/plain", reply.Get("Content-Type"))
	assert.Equal(t, "Hello world!", string(reply.Body))
}

func TestGuest_InstancePerInvocation(t *testing.T) {
	ctx := context.Background()
	g := newTestGuest(t, helloGuest())

	for i := 0; i < 3; i++ {
		host := hostabi.NewSim(hostabi.Request{})
		require.NoError(t, adapter.Invoke(ctx, host, g))
		reply, _ := host.Reply()
		assert.Equal(t, "Hello world!", string(reply.Body))
	}
}

func TestGuest_ReturnsAllocatedString(t *testing.T) {
	ctx := context.Background()
	g := newTestGuest(t, pathGuest())
	host := hostabi.NewSim(hostabi.Request{URI: "http://example.com/hello/world?x=1"})

	require.NoError(t, adapter.Invoke(ctx, host, g))

	reply, _ := host.Reply()
	assert.Equal(t, "/hello/world", string(reply.Body))
}

func TestGuest_FaultTraps(t *testing.T) {
	ctx := context.Background()
	g := newTestGuest(t, callGuest(TypesModule, "drop-fields", i32c(99)))
	host := hostabi.NewSim(hostabi.Request{})

	err := adapter.Invoke(ctx, host, g)
	require.Error(t, err)
	assert.True(t, errors.IsFault(err))

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.KindUnknownHandle, e.Kind)
	assert.Equal(t, "fields", e.Resource)

	_, sent := host.Reply()
	assert.False(t, sent)
}

func TestGuest_WrongOutparamTraps(t *testing.T) {
	ctx := context.Background()
	g := newTestGuest(t, callGuest(TypesModule, "drop-response-outparam", i32c(5)))

	err := adapter.Invoke(ctx, hostabi.NewSim(hostabi.Request{}), g)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseOutparam, Kind: errors.KindIdentityMismatch}))
}

func TestGuest_UnsupportedTraps(t *testing.T) {
	ctx := context.Background()
	g := newTestGuest(t, callGuest(StreamsModule, "write-zeroes", i32c(1), i64c(8), i32c(64)))

	err := adapter.Invoke(ctx, hostabi.NewSim(hostabi.Request{}), g)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e), "err = %v", err)
	assert.Equal(t, errors.KindUnsupported, e.Kind)
	assert.Equal(t, "write-zeroes", e.Op)
	assert.False(t, errors.IsFault(err))
}

func TestNewGuest_MissingImport(t *testing.T) {
	var b wasmBuilder
	b.importFunc(TypesModule, "new-fields", []api.ValueType{i32, i32}, []api.ValueType{i32})
	b.importFunc(TypesModule, "fields-frobnicate", []api.ValueType{i32}, nil)
	b.importFunc(StreamsModule, "check-write", []api.ValueType{i32, i32}, nil)
	b.export(HandleExport, b.function([]api.ValueType{i32, i32}, nil, 0))

	_, err := NewGuest(context.Background(), b.bytes())
	var missing *errors.MissingImportsError
	require.True(t, stderrors.As(err, &missing), "err = %v", err)
	assert.Equal(t, []errors.MissingImport{
		{Namespace: TypesModule, Function: "fields-frobnicate"},
		{Namespace: StreamsModule, Function: "check-write"},
	}, missing.Imports)
}

func TestNewGuest_SignatureMismatch(t *testing.T) {
	var b wasmBuilder
	b.importFunc(TypesModule, "new-fields", []api.ValueType{i32}, nil)
	b.export(HandleExport, b.function([]api.ValueType{i32, i32}, nil, 0))

	_, err := NewGuest(context.Background(), b.bytes())
	var e *errors.Error
	require.True(t, stderrors.As(err, &e), "err = %v", err)
	assert.Equal(t, errors.KindInvalidData, e.Kind)
	assert.Equal(t, TypesModule+"#new-fields", e.Op)
}

func TestNewGuest_MissingHandleExport(t *testing.T) {
	var b wasmBuilder
	b.export("handle", b.function([]api.ValueType{i32, i32}, nil, 0))

	_, err := NewGuest(context.Background(), b.bytes())
	var e *errors.Error
	require.True(t, stderrors.As(err, &e), "err = %v", err)
	assert.Equal(t, errors.KindNotFound, e.Kind)
}

func TestNewGuest_InvalidModule(t *testing.T) {
	_, err := NewGuest(context.Background(), []byte("not wasm"))
	var e *errors.Error
	require.True(t, stderrors.As(err, &e), "err = %v", err)
	assert.Equal(t, errors.PhaseBind, e.Phase)
}
