// Package guest provides native Go handlers that use the adapter the way a
// wasi-http guest would: build header fields, create a response, write its
// body through an output stream and set it on the outparam.
package guest
