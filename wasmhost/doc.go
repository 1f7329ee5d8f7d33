// Package wasmhost runs WebAssembly guests against the adapter.
//
// Adapter operations are exported to the guest as wazero host functions in
// the modules wasi:http/types, wasi:io/streams and wasi:http/outgoing-handler.
// Signatures are declared with WIT types and flattened to core wasm types with
// the canonical ABI rules; results that do not fit in one core value are
// written through a return pointer, and strings and lists handed to the guest
// are allocated with its cabi_realloc export.
//
// Each invocation instantiates the compiled guest anonymously and calls its
// wasi:http/incoming-handler#handle export. Host functions find the invocation
// State through the call context. A fault or unsupported call traps the guest;
// the originating *errors.Error is returned from Handle.
package wasmhost
