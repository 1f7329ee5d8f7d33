// Package adapter implements the wasi-http object model on top of the legacy
// single-request host ABI.
//
// A State owns every handle a guest can hold during one invocation: header
// collections, the incoming request and its body streams, outgoing responses
// and their body streams, and the single response outparam. Each operation is
// a short transaction against the state that issues zero or more host calls.
//
//	host := hostabi.NewSim(hostabi.Request{Method: "GET", URI: "http://example.com/"})
//	err := adapter.Invoke(ctx, host, adapter.HandlerFunc(func(ctx context.Context, s *adapter.State, req adapter.IncomingRequest, out adapter.ResponseOutparam) error {
//	    headers := s.NewFields(ctx, []adapter.Entry{{Name: "Content-Type", Value: "text/plain"}})
//	    resp, err := s.NewOutgoingResponse(ctx, 200, headers)
//	    if err != nil {
//	        return err
//	    }
//	    body := s.OutgoingResponseWrite(ctx, resp)
//	    if _, err := s.Write(ctx, body, []byte("Hello world!")); err != nil {
//	        return err
//	    }
//	    s.SetResponseOutparam(ctx, resp)
//	    return nil
//	}))
//
// # Response Outparam
//
// The downstream reply is chosen with SetResponseOutparam and sent when the
// outparam is dropped. DropResponseOutparam is terminal: it sends at most one
// reply and every outparam call after it faults.
//
// # Faults
//
// Passing a handle that is not live, a request other than the invocation's
// request, or an outparam other than DownstreamOutparam is a caller bug. These
// calls panic with an *errors.Error. Serve and Invoke recover them into the
// returned error.
//
// # Unsupported Surface
//
// Outgoing requests, incoming responses, skip, splice, forward, write-zeroes
// and subscriptions have no legacy host counterpart. They return an error of
// kind unsupported.
package adapter
