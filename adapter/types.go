package adapter

import (
	"strconv"
	"strings"
)

// Handle types exposed to guests. Each kind is numbered independently.
type (
	Fields                 uint32
	IncomingRequest        uint32
	InputStream            uint32
	OutgoingResponse       uint32
	OutputStream           uint32
	ResponseOutparam       uint32
	FutureTrailers         uint32
	OutgoingRequest        uint32
	IncomingResponse       uint32
	FutureIncomingResponse uint32
	Pollable               uint32
)

// DownstreamOutparam is the only response outparam. Its reply goes to the
// downstream client.
const DownstreamOutparam ResponseOutparam = 0

// Entry is one header line in a Fields collection.
type Entry struct {
	Name  string
	Value string
}

// MethodKind enumerates request methods in interface declaration order.
type MethodKind uint8

const (
	MethodGet MethodKind = iota
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPatch
	MethodOther
)

var methodNames = [...]string{
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodConnect: "CONNECT",
	MethodOptions: "OPTIONS",
	MethodTrace:   "TRACE",
	MethodPatch:   "PATCH",
}

// Method is a request method. Other holds the literal text when Kind is
// MethodOther.
type Method struct {
	Other string
	Kind  MethodKind
}

// ParseMethod maps text to a Method. Matching is exact; "get" is Other.
func ParseMethod(s string) Method {
	for k, name := range methodNames {
		if name == s {
			return Method{Kind: MethodKind(k)}
		}
	}
	return Method{Kind: MethodOther, Other: s}
}

func (m Method) String() string {
	if m.Kind == MethodOther {
		return m.Other
	}
	if int(m.Kind) < len(methodNames) {
		return methodNames[m.Kind]
	}
	return "method(" + strconv.Itoa(int(m.Kind)) + ")"
}

// SchemeKind enumerates request schemes in interface declaration order.
type SchemeKind uint8

const (
	SchemeHTTP SchemeKind = iota
	SchemeHTTPS
	SchemeOther
)

// Scheme is a request scheme. Other holds the literal text when Kind is
// SchemeOther.
type Scheme struct {
	Other string
	Kind  SchemeKind
}

// ParseScheme maps a lowercase scheme to a Scheme.
func ParseScheme(s string) Scheme {
	switch s {
	case "http":
		return Scheme{Kind: SchemeHTTP}
	case "https":
		return Scheme{Kind: SchemeHTTPS}
	default:
		return Scheme{Kind: SchemeOther, Other: s}
	}
}

func (s Scheme) String() string {
	switch s.Kind {
	case SchemeHTTP:
		return "http"
	case SchemeHTTPS:
		return "https"
	default:
		return s.Other
	}
}

// ErrorKind enumerates the structural errors a handler may report through the
// response outparam.
type ErrorKind uint8

const (
	ErrorInvalidURL ErrorKind = iota
	ErrorTimeout
	ErrorProtocol
	ErrorUnexpected
)

var errorKindNames = [...]string{
	ErrorInvalidURL: "invalid-url",
	ErrorTimeout:    "timeout-error",
	ErrorProtocol:   "protocol-error",
	ErrorUnexpected: "unexpected-error",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "error(" + strconv.Itoa(int(k)) + ")"
}

// ErrorCode is a structural error reported instead of a response.
type ErrorCode struct {
	Message string
	Kind    ErrorKind
}

func (e ErrorCode) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}
