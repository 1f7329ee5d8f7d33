// Package errors provides structured error types for the HTTP adapter.
//
// Errors are categorized by Phase (which part of the adapter failed) and Kind
// (error category). The Error type carries the interface operation, the resource
// kind and handle involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseFields, errors.KindUnknownHandle).
//		Op("fields-get").
//		Resource("fields").
//		Handle(7).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Unsupported(errors.PhaseClient, "new-outgoing-request")
//	err := errors.HostFailure(errors.PhaseStream, "read", cause)
//
// Contract violations (unknown handles, singleton identity mismatches) are raised
// as panics with Raise and turned back into errors at boundaries with Catch.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
