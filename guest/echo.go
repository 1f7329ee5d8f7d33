package guest

import (
	"bytes"
	"context"
	"net/url"

	"github.com/alecthomas/chroma/v2/quick"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/http-adapter/adapter"
)

const echoChunk = 4096

// Report is the request summary Echo returns.
type Report struct {
	Method    string   `yaml:"method"`
	Path      string   `yaml:"path"`
	Query     string   `yaml:"query,omitempty"`
	Scheme    string   `yaml:"scheme,omitempty"`
	Authority string   `yaml:"authority,omitempty"`
	Headers   []Header `yaml:"headers,omitempty"`
	Body      string   `yaml:"body,omitempty"`
	BodyBytes int      `yaml:"body_bytes"`
}

// Header is one request header in a Report.
type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Echo answers with a YAML report of the request. With a highlight query
// parameter the report is returned as syntax-highlighted HTML.
func Echo() adapter.Handler {
	return adapter.HandlerFunc(func(ctx context.Context, s *adapter.State, req adapter.IncomingRequest, _ adapter.ResponseOutparam) error {
		report, err := Inspect(ctx, s, req)
		if err != nil {
			return err
		}
		doc, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		values, _ := url.ParseQuery(report.Query)
		if !values.Has("highlight") {
			return respond(ctx, s, 200, []adapter.Entry{{Name: "Content-Type", Value: "application/yaml"}}, doc)
		}

		var page bytes.Buffer
		if err := quick.Highlight(&page, string(doc), "yaml", "html", "monokai"); err != nil {
			return err
		}
		return respond(ctx, s, 200, []adapter.Entry{{Name: "Content-Type", Value: "text/html"}}, page.Bytes())
	})
}

// Inspect reads every request property and drains the body.
func Inspect(ctx context.Context, s *adapter.State, req adapter.IncomingRequest) (Report, error) {
	var r Report

	method, err := s.IncomingRequestMethod(ctx, req)
	if err != nil {
		return r, err
	}
	r.Method = method.String()

	if r.Path, err = s.IncomingRequestPath(ctx, req); err != nil {
		return r, err
	}
	if r.Query, err = s.IncomingRequestQuery(ctx, req); err != nil {
		return r, err
	}
	scheme, ok, err := s.IncomingRequestScheme(ctx, req)
	if err != nil {
		return r, err
	}
	if ok {
		r.Scheme = scheme.String()
	}
	if r.Authority, err = s.IncomingRequestAuthority(ctx, req); err != nil {
		return r, err
	}

	headers, err := s.IncomingRequestHeaders(ctx, req)
	if err != nil {
		return r, err
	}
	for _, e := range s.FieldsEntries(ctx, headers) {
		r.Headers = append(r.Headers, Header{Name: e.Name, Value: e.Value})
	}
	s.DropFields(ctx, headers)

	in, err := s.IncomingRequestConsume(ctx, req)
	if err != nil {
		return r, err
	}
	var body []byte
	for {
		p, eof, err := s.BlockingRead(ctx, in, echoChunk)
		if err != nil {
			return r, err
		}
		if eof {
			break
		}
		body = append(body, p...)
	}
	s.FinishIncomingStream(ctx, in)

	r.Body = string(body)
	r.BodyBytes = len(body)
	return r, nil
}
