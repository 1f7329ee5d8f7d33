// Package server exposes an adapter.Handler over net/http. Each request is
// one invocation with its own State and host.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/dchest/uniuri"
	"go.uber.org/zap"

	"github.com/wippyai/http-adapter/adapter"
	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/hostabi"
)

const (
	// RequestIDHeader carries the per-invocation id on every reply.
	RequestIDHeader = "X-Request-Id"

	requestIDLen    = 16
	shutdownTimeout = 5 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHostOptions passes opts to every net/http host.
func WithHostOptions(opts ...hostabi.HTTPOption) Option {
	return func(s *Server) {
		s.hostOpts = append(s.hostOpts, opts...)
	}
}

// WithStateOptions passes opts to every invocation State.
func WithStateOptions(opts ...adapter.Option) Option {
	return func(s *Server) {
		s.stateOpts = append(s.stateOpts, opts...)
	}
}

// Server serves HTTP requests with a handler.
type Server struct {
	handler   adapter.Handler
	log       *zap.Logger
	hostOpts  []hostabi.HTTPOption
	stateOpts []adapter.Option
}

// New creates a server for h.
func New(h adapter.Handler, opts ...Option) *Server {
	s := &Server{handler: h, log: Logger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP runs one invocation. A request the guest leaves unanswered gets
// 502; a fault or handler error before the reply gets 500.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := uniuri.NewLen(requestIDLen)
	log := s.log.With(zap.String("request_id", id))
	w.Header().Set(RequestIDHeader, id)

	host, err := hostabi.NewHTTPHost(w, r, s.hostOpts...)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		log.Warn("read request", zap.Error(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	start := time.Now()
	opts := append([]adapter.Option{adapter.WithLogger(log)}, s.stateOpts...)
	err = adapter.Invoke(r.Context(), host, s.handler, opts...)
	reply, sent := host.Reply()

	switch {
	case sent:
		log.Info("request served",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Uint16("status", reply.Status),
			zap.Int("bytes", len(reply.Body)),
			zap.Duration("elapsed", time.Since(start)))
		if err != nil {
			log.Warn("invocation failed after reply", zap.Error(err))
		}
	case err != nil:
		log.Error("invocation failed", zap.Error(err), zap.Bool("fault", errors.IsFault(err)))
		http.Error(w, "guest failed", http.StatusInternalServerError)
	default:
		log.Warn("guest sent no response")
		http.Error(w, "guest sent no response", http.StatusBadGateway)
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.PhaseServe, errors.KindHostFailure, err, "listen")
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(errors.PhaseServe, errors.KindHostFailure, err, "serve")
	}
	return <-done
}
