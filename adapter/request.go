package adapter

import (
	"context"
	"net/url"
	"strings"

	"github.com/wippyai/http-adapter/errors"
)

// Incoming request operations. Every operation checks that req is the
// invocation's request.

// IncomingRequestMethod returns the request method.
// incoming-request-method: func(request: incoming-request) -> method
func (s *State) IncomingRequestMethod(_ context.Context, req IncomingRequest) (Method, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "incoming-request-method"
	in, err := s.requestLocked(op, req)
	if err != nil {
		return Method{}, err
	}
	text, err := s.host.RequestMethod(in.req)
	if err != nil {
		return Method{}, errors.HostFailure(errors.PhaseRequest, op, err)
	}
	return ParseMethod(text), nil
}

// IncomingRequestPath returns the escaped URI path, "/" when the URI has none
// or does not parse.
// incoming-request-path: func(request: incoming-request) -> string
func (s *State) IncomingRequestPath(_ context.Context, req IncomingRequest) (string, error) {
	u, err := s.requestURL("incoming-request-path", req)
	if err != nil {
		return "", err
	}
	if u == nil || u.EscapedPath() == "" {
		return "/", nil
	}
	return u.EscapedPath(), nil
}

// IncomingRequestQuery returns the raw query, "" when absent.
// incoming-request-query: func(request: incoming-request) -> string
func (s *State) IncomingRequestQuery(_ context.Context, req IncomingRequest) (string, error) {
	u, err := s.requestURL("incoming-request-query", req)
	if err != nil || u == nil {
		return "", err
	}
	return u.RawQuery, nil
}

// IncomingRequestScheme returns the URI scheme. ok is false when the URI does
// not parse or is not absolute.
// incoming-request-scheme: func(request: incoming-request) -> option<scheme>
func (s *State) IncomingRequestScheme(_ context.Context, req IncomingRequest) (scheme Scheme, ok bool, err error) {
	u, err := s.requestURL("incoming-request-scheme", req)
	if err != nil || u == nil || u.Scheme == "" {
		return Scheme{}, false, err
	}
	return ParseScheme(u.Scheme), true, nil
}

// IncomingRequestAuthority returns the URI host without port, "" when absent.
// incoming-request-authority: func(request: incoming-request) -> string
func (s *State) IncomingRequestAuthority(_ context.Context, req IncomingRequest) (string, error) {
	u, err := s.requestURL("incoming-request-authority", req)
	if err != nil || u == nil {
		return "", err
	}
	host := u.Hostname()
	if strings.Contains(host, ":") {
		return "[" + host + "]", nil
	}
	return host, nil
}

// requestURL fetches and parses the request URI. A URI that does not parse
// yields a nil URL and no error.
func (s *State) requestURL(op string, req IncomingRequest) (*url.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := s.requestLocked(op, req)
	if err != nil {
		return nil, err
	}
	raw, err := s.host.RequestURI(in.req)
	if err != nil {
		return nil, errors.HostFailure(errors.PhaseRequest, op, err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		s.log.Debug("request uri does not parse")
		return nil, nil
	}
	return u, nil
}

// IncomingRequestHeaders builds a new collection from the host's request
// headers. Each call returns a fresh handle.
// incoming-request-headers: func(request: incoming-request) -> headers
func (s *State) IncomingRequestHeaders(_ context.Context, req IncomingRequest) (Fields, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "incoming-request-headers"
	in, err := s.requestLocked(op, req)
	if err != nil {
		return 0, err
	}
	names, err := s.host.RequestHeaderNames(in.req)
	if err != nil {
		return 0, errors.HostFailure(errors.PhaseRequest, op, err)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		value, _, err := s.host.RequestHeaderValue(in.req, name)
		if err != nil {
			return 0, errors.HostFailure(errors.PhaseRequest, op, err)
		}
		entries = append(entries, Entry{Name: name, Value: value})
	}
	return Fields(s.fields.Insert(entries)), nil
}

// IncomingRequestConsume opens a stream over the request body.
// incoming-request-consume: func(request: incoming-request) -> result<incoming-stream>
func (s *State) IncomingRequestConsume(_ context.Context, req IncomingRequest) (InputStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := s.requestLocked("incoming-request-consume", req)
	if err != nil {
		return 0, err
	}
	return InputStream(s.inputs.Insert(in.body)), nil
}

// DropIncomingRequest checks req. The request itself lives for the invocation.
// drop-incoming-request: func(request: incoming-request)
func (s *State) DropIncomingRequest(_ context.Context, req IncomingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.requestLocked("drop-incoming-request", req)
	return err
}
