// Package hostabi describes the legacy single-request HTTP host ABI and
// provides two implementations of it.
//
// The ABI exposes one downstream request per invocation (method, URI, header
// names and values, body) and lets the caller build and send exactly one
// downstream response out of a response object and a body buffer. Every
// object is addressed by an integer handle and every call returns a Status.
//
// Sim is an in-memory host backed by resource tables. It records the reply it
// was asked to send, which makes it the host of choice for tests and for the
// command line runner.
//
// NewHTTPHost adapts a net/http request and response writer to the same
// contract, optionally gzip-compressing the reply.
package hostabi
