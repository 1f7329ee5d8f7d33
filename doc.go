// Package httpadapter serves wasi-http handlers on top of a legacy
// single-request host ABI.
//
// A guest written against the wasi-http interfaces (fields, incoming request,
// outgoing response, byte streams, response outparam) runs unchanged on a host
// that only knows how to hand out one downstream request, build responses and
// send one reply. The adapter keeps its own handle tables and translates each
// interface call into host calls.
//
// # Layout
//
//	httpadapter/         Memory and Allocator interfaces for guest linear memory
//	├── adapter/         Handle tables and the wasi-http operations
//	├── hostabi/         Legacy host ABI: Host interface, status codes, Sim, net/http host
//	├── resource/        Generic handle table with lifecycle events
//	├── wasmhost/        Binds adapter operations as wazero host functions
//	├── guest/           Native Go handlers (hello, render, echo)
//	├── config/          YAML configuration
//	├── server/          net/http front end, one invocation per request
//	├── errors/          Structured errors and fault recovery
//	└── cmd/http-adapter CLI: serve, run, list
//
// # Quick Start
//
// Serve one request with a native handler:
//
//	host := hostabi.NewSim(hostabi.Request{Method: "GET", URI: "http://example.com/"})
//	err := adapter.Invoke(ctx, host, guest.Hello())
//	reply, _ := host.Reply()
//	fmt.Println(reply.Status, string(reply.Body)) // 200 Hello world!
//
// Serve one request with a WebAssembly guest:
//
//	g, err := wasmhost.NewGuest(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close(ctx)
//
//	err = adapter.Invoke(ctx, host, g)
//
// # Concurrency
//
// A State serves one invocation and serializes its operations with a mutex.
// Concurrent requests each get their own State and host. A wasmhost Guest
// instantiates a fresh module per invocation and is safe for concurrent use.
package httpadapter
