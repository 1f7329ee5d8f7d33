package hostabi

import (
	"bytes"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/wippyai/http-adapter/errors"
)

const (
	defaultMaxBodyBytes = 10 << 20
	minCompressSize     = 256
)

type httpConfig struct {
	maxBody  int64
	level    int
	compress bool
}

// HTTPOption configures NewHTTPHost.
type HTTPOption func(*httpConfig)

// WithCompression gzips replies for clients that accept it.
func WithCompression(enabled bool) HTTPOption {
	return func(c *httpConfig) {
		c.compress = enabled
	}
}

// WithCompressionLevel sets the gzip level used by WithCompression.
func WithCompressionLevel(level int) HTTPOption {
	return func(c *httpConfig) {
		c.level = level
	}
}

// WithMaxBodyBytes limits how much of the request body is buffered.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(c *httpConfig) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// NewHTTPHost buffers r and returns a host that serves it as the downstream
// request. The reply is written to w when the guest sends it.
func NewHTTPHost(w http.ResponseWriter, r *http.Request, opts ...HTTPOption) (*Sim, error) {
	cfg := httpConfig{
		maxBody: defaultMaxBodyBytes,
		level:   gzip.DefaultCompression,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.maxBody))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidInput, err, "read request body")
	}

	req := Request{
		Method: r.Method,
		URI:    absoluteURI(r),
		Header: requestFields(r),
		Body:   body,
	}

	send := func(reply Reply) error {
		return writeReply(w, r, reply, cfg)
	}
	return NewSim(req, WithSendHook(send)), nil
}

func absoluteURI(r *http.Request) string {
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// requestFields flattens r.Header into lowercase fields. net/http strips Host
// from the header map, so it is restored first.
func requestFields(r *http.Request) []Field {
	fields := make([]Field, 0, len(r.Header)+1)
	if r.Host != "" {
		fields = append(fields, Field{Name: "host", Value: r.Host})
	}
	for _, name := range slices.Sorted(maps.Keys(r.Header)) {
		lower := strings.ToLower(name)
		for _, v := range r.Header[name] {
			fields = append(fields, Field{Name: lower, Value: v})
		}
	}
	return fields
}

func writeReply(w http.ResponseWriter, r *http.Request, reply Reply, cfg httpConfig) error {
	h := w.Header()
	for _, f := range reply.Header {
		h.Add(f.Name, f.Value)
	}

	body := reply.Body
	if cfg.compress && acceptsGzip(r) && h.Get("Content-Encoding") == "" && len(body) >= minCompressSize {
		compressed, err := gzipBytes(body, cfg.level)
		if err != nil {
			return err
		}
		body = compressed
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))

	w.WriteHeader(int(reply.Status))
	if r.Method == http.MethodHead {
		return nil
	}
	_, err := w.Write(body)
	return err
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(coding, "gzip") {
			return true
		}
	}
	return false
}

func gzipBytes(p []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
