package adapter

import (
	"reflect"
	"testing"

	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/hostabi"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"GET", Method{Kind: MethodGet}},
		{"HEAD", Method{Kind: MethodHead}},
		{"POST", Method{Kind: MethodPost}},
		{"PUT", Method{Kind: MethodPut}},
		{"DELETE", Method{Kind: MethodDelete}},
		{"CONNECT", Method{Kind: MethodConnect}},
		{"OPTIONS", Method{Kind: MethodOptions}},
		{"TRACE", Method{Kind: MethodTrace}},
		{"PATCH", Method{Kind: MethodPatch}},
		{"PURGE", Method{Kind: MethodOther, Other: "PURGE"}},
		{"get", Method{Kind: MethodOther, Other: "get"}},
	}
	for _, tt := range tests {
		got := ParseMethod(tt.in)
		if got != tt.want {
			t.Errorf("ParseMethod(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestIncomingRequest_URIParts(t *testing.T) {
	tests := []struct {
		name      string
		uri       string
		path      string
		query     string
		scheme    string
		hasScheme bool
		authority string
	}{
		{
			name: "full", uri: "https://example.com:8443/a/b%20c?x=1&y=2",
			path: "/a/b%20c", query: "x=1&y=2", scheme: "https", hasScheme: true, authority: "example.com",
		},
		{
			name: "no path no query", uri: "http://example.com",
			path: "/", query: "", scheme: "http", hasScheme: true, authority: "example.com",
		},
		{
			name: "other scheme", uri: "ws://chat.example/socket",
			path: "/socket", scheme: "ws", hasScheme: true, authority: "chat.example",
		},
		{
			name: "ipv6 host", uri: "http://[::1]:8080/",
			path: "/", scheme: "http", hasScheme: true, authority: "[::1]",
		},
		{
			name: "relative", uri: "/only/path?q",
			path: "/only/path", query: "q", hasScheme: false, authority: "",
		},
		{
			name: "unparseable", uri: "http://bad host/%zz",
			path: "/", query: "", hasScheme: false, authority: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestState(t, hostabi.Request{URI: tt.uri})
			req, err := s.IncomingRequest(ctx)
			if err != nil {
				t.Fatalf("IncomingRequest: %v", err)
			}

			path, err := s.IncomingRequestPath(ctx, req)
			if err != nil || path != tt.path {
				t.Errorf("path = %q, %v; want %q", path, err, tt.path)
			}
			query, err := s.IncomingRequestQuery(ctx, req)
			if err != nil || query != tt.query {
				t.Errorf("query = %q, %v; want %q", query, err, tt.query)
			}
			scheme, ok, err := s.IncomingRequestScheme(ctx, req)
			if err != nil || ok != tt.hasScheme || (ok && scheme.String() != tt.scheme) {
				t.Errorf("scheme = %v, %v, %v; want %q, %v", scheme, ok, err, tt.scheme, tt.hasScheme)
			}
			authority, err := s.IncomingRequestAuthority(ctx, req)
			if err != nil || authority != tt.authority {
				t.Errorf("authority = %q, %v; want %q", authority, err, tt.authority)
			}
		})
	}
}

func TestIncomingRequest_Scheme(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{URI: "HTTPS://Example.com/"})
	req, _ := s.IncomingRequest(ctx)

	scheme, ok, err := s.IncomingRequestScheme(ctx, req)
	if err != nil || !ok || scheme.Kind != SchemeHTTPS {
		t.Fatalf("scheme = %+v, %v, %v", scheme, ok, err)
	}
}

func TestIncomingRequest_MethodAndHeaders(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{
		Method: "PATCH",
		URI:    "http://example.com/",
		Header: []hostabi.Field{
			{Name: "content-type", Value: "application/json"},
			{Name: "x-empty", Value: ""},
			{Name: "accept", Value: "a"},
			{Name: "accept", Value: "b"},
		},
	})
	req, _ := s.IncomingRequest(ctx)

	m, err := s.IncomingRequestMethod(ctx, req)
	if err != nil || m.Kind != MethodPatch {
		t.Errorf("method = %+v, %v", m, err)
	}

	h1, err := s.IncomingRequestHeaders(ctx, req)
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	want := []Entry{
		{"content-type", "application/json"},
		{"x-empty", ""},
		{"accept", "a"},
	}
	if got := s.FieldsEntries(ctx, h1); !reflect.DeepEqual(got, want) {
		t.Errorf("headers = %v, want %v", got, want)
	}

	h2, _ := s.IncomingRequestHeaders(ctx, req)
	if h1 == h2 {
		t.Fatal("headers returned the same handle twice")
	}
	s.FieldsAppend(ctx, h2, "x-new", "1")
	if len(s.FieldsEntries(ctx, h1)) != 3 {
		t.Error("headers collections are not independent")
	}
}

func TestIncomingRequest_IsLazyAndSingle(t *testing.T) {
	s, host := newTestState(t, hostabi.Request{URI: "http://h/"})

	if _, ok := host.Reply(); ok {
		t.Fatal("unexpected reply")
	}
	r1, err := s.IncomingRequest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	r2, _ := s.IncomingRequest(ctx)
	if r1 != r2 {
		t.Fatalf("request handle changed: %d then %d", r1, r2)
	}
}

func TestIncomingRequest_Consume(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{URI: "http://h/", Body: []byte("abcdef")})
	req, _ := s.IncomingRequest(ctx)

	in, err := s.IncomingRequestConsume(ctx, req)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	var got []byte
	for {
		p, eof, err := s.Read(ctx, in, 4)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if eof {
			break
		}
		got = append(got, p...)
	}
	if string(got) != "abcdef" {
		t.Errorf("body = %q", got)
	}

	in2, err := s.IncomingRequestConsume(ctx, req)
	if err != nil || in2 == in {
		t.Errorf("second consume = %d, %v", in2, err)
	}
}

func TestIncomingRequest_WrongHandleFaults(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{URI: "http://h/"})
	req, _ := s.IncomingRequest(ctx)
	bad := req + 7

	ops := map[string]func(){
		"method":    func() { _, _ = s.IncomingRequestMethod(ctx, bad) },
		"path":      func() { _, _ = s.IncomingRequestPath(ctx, bad) },
		"query":     func() { _, _ = s.IncomingRequestQuery(ctx, bad) },
		"scheme":    func() { _, _, _ = s.IncomingRequestScheme(ctx, bad) },
		"authority": func() { _, _ = s.IncomingRequestAuthority(ctx, bad) },
		"headers":   func() { _, _ = s.IncomingRequestHeaders(ctx, bad) },
		"consume":   func() { _, _ = s.IncomingRequestConsume(ctx, bad) },
		"drop":      func() { _ = s.DropIncomingRequest(ctx, bad) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			e := expectFault(t, op)
			if e.Kind != errors.KindIdentityMismatch || e.Phase != errors.PhaseRequest {
				t.Errorf("fault = %v", e)
			}
		})
	}

	if err := s.DropIncomingRequest(ctx, req); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := s.IncomingRequestMethod(ctx, req); err != nil {
		t.Errorf("request unusable after drop: %v", err)
	}
}
