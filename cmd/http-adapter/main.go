// Command http-adapter serves wasi-http guests over a legacy single-request
// host. It can run a guest as an HTTP server, invoke it once against an
// in-memory host, or list what a guest may import.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/http-adapter/adapter"
	"github.com/wippyai/http-adapter/config"
	"github.com/wippyai/http-adapter/guest"
	"github.com/wippyai/http-adapter/hostabi"
	"github.com/wippyai/http-adapter/server"
	"github.com/wippyai/http-adapter/wasmhost"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: http-adapter <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve   serve the guest over HTTP")
	fmt.Fprintln(w, "  run     invoke the guest once against an in-memory host")
	fmt.Fprintln(w, "  list    list built-in guests and adapter imports")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'http-adapter <command> --help' for command flags.")
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage(os.Stderr)
		return fmt.Errorf("missing command")
	}
	switch args[0] {
	case "serve":
		return serveCmd(args[1:])
	case "run":
		return runCmd(args[1:], stdout)
	case "list":
		return listCmd(args[1:], stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// commonFlags are shared by serve and run.
type commonFlags struct {
	configPath string
	guest      string
	logLevel   string
	jsonLogs   bool
}

func (c *commonFlags) add(fs *pflag.FlagSet) {
	fs.StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	fs.StringVarP(&c.guest, "guest", "g", "", "built-in guest name or .wasm path")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&c.jsonLogs, "json-logs", false, "write logs as JSON")
}

// load reads the config file, if any, and applies flag overrides.
func (c *commonFlags) load(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if fs.Changed("guest") {
		cfg.Guest = c.guest
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(fs *pflag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// newLogger writes to stderr. Console encoding is used on a terminal unless
// JSON is asked for.
func newLogger(level zapcore.Level, jsonLogs bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonLogs || !term.IsTerminal(int(os.Stderr.Fd())) {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
}

// loadHandler resolves cfg.Guest to a handler. The returned func releases it.
func loadHandler(ctx context.Context, cfg *config.Config, log *zap.Logger) (adapter.Handler, func(), error) {
	if !cfg.IsWasm() {
		h, ok := guest.Lookup(cfg.Guest, cfg.Render)
		if !ok {
			return nil, nil, fmt.Errorf("unknown guest %q (have %s)", cfg.Guest, strings.Join(guest.Names(), ", "))
		}
		return h, func() {}, nil
	}

	data, err := os.ReadFile(cfg.Guest)
	if err != nil {
		return nil, nil, fmt.Errorf("read guest: %w", err)
	}
	g, err := wasmhost.NewGuest(ctx, data,
		wasmhost.WithLogger(log.Named("wasm")),
		wasmhost.WithMemoryLimitPages(cfg.MemoryLimitPages))
	if err != nil {
		return nil, nil, fmt.Errorf("load guest: %w", err)
	}
	return g, func() { _ = g.Close(context.Background()) }, nil
}

func serveCmd(args []string) error {
	var common commonFlags
	var listen string

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVarP(&listen, "listen", "l", "", "address to listen on")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	cfg, err := common.load(fs)
	if err != nil {
		return err
	}
	if fs.Changed("listen") {
		cfg.Listen = listen
	}

	log := newLogger(cfg.Level(), common.jsonLogs)
	defer func() { _ = log.Sync() }()
	adapter.SetLogger(log.Named("adapter"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, release, err := loadHandler(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer release()

	log.Info("serving guest", zap.String("guest", cfg.Guest), zap.Bool("compress", cfg.Compress))
	srv := server.New(h,
		server.WithLogger(log.Named("server")),
		server.WithHostOptions(
			hostabi.WithCompression(cfg.Compress),
			hostabi.WithMaxBodyBytes(cfg.MaxBodyBytes),
		))
	return srv.ListenAndServe(ctx, cfg.Listen)
}

// runResult is the --json form of a single invocation.
type runResult struct {
	Error   string     `json:"error,omitempty"`
	Headers [][]string `json:"headers,omitempty"`
	Body    string     `json:"body"`
	Status  uint16     `json:"status,omitempty"`
	Sent    bool       `json:"sent"`
}

func runCmd(args []string, stdout io.Writer) error {
	var (
		common      commonFlags
		method      string
		uri         string
		data        string
		headers     []string
		asJSON      bool
		interactive bool
	)

	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVarP(&method, "method", "X", "GET", "request method")
	fs.StringVarP(&uri, "uri", "u", "http://localhost/", "request URI")
	fs.StringVarP(&data, "data", "d", "", "request body")
	fs.StringArrayVarP(&headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	fs.BoolVar(&asJSON, "json", false, "print the reply as JSON")
	fs.BoolVarP(&interactive, "interactive", "i", false, "edit and replay the request in a TUI")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	cfg, err := common.load(fs)
	if err != nil {
		return err
	}

	req := hostabi.Request{Method: method, URI: uri, Body: []byte(data)}
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q", h)
		}
		req.Header = append(req.Header, hostabi.Field{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}

	log := newLogger(cfg.Level(), common.jsonLogs)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	h, release, err := loadHandler(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer release()

	if interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(cfg.Guest, h, req)
	}

	host := hostabi.NewSim(req)
	invokeErr := adapter.Invoke(ctx, host, h, adapter.WithLogger(log.Named("adapter")))
	reply, sent := host.Reply()

	if asJSON {
		res := runResult{Status: reply.Status, Body: string(reply.Body), Sent: sent}
		for _, f := range reply.Header {
			res.Headers = append(res.Headers, []string{f.Name, f.Value})
		}
		if invokeErr != nil {
			res.Error = invokeErr.Error()
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if sent {
		writeReply(stdout, reply)
	}
	if invokeErr != nil {
		return invokeErr
	}
	if !sent {
		return fmt.Errorf("guest sent no response")
	}
	return nil
}

func writeReply(w io.Writer, reply hostabi.Reply) {
	fmt.Fprintf(w, "HTTP %d\n", reply.Status)
	for _, f := range reply.Header {
		fmt.Fprintf(w, "%s: %s\n", f.Name, f.Value)
	}
	fmt.Fprintln(w)
	_, _ = w.Write(reply.Body)
	if len(reply.Body) > 0 && reply.Body[len(reply.Body)-1] != '\n' {
		fmt.Fprintln(w)
	}
}

// listing is the --json form of list.
type listing struct {
	Guests  []string `json:"guests"`
	Imports []string `json:"imports"`
}

func listCmd(args []string, stdout io.Writer) error {
	var asJSON bool
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	fs.BoolVar(&asJSON, "json", false, "print as JSON")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	var l listing
	l.Guests = guest.Names()
	for _, f := range wasmhost.Functions() {
		l.Imports = append(l.Imports, f.String())
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	}

	fmt.Fprintln(stdout, "Built-in guests:")
	for _, g := range l.Guests {
		fmt.Fprintf(stdout, "  %s\n", g)
	}
	fmt.Fprintln(stdout, "\nAdapter imports:")
	for _, f := range l.Imports {
		fmt.Fprintf(stdout, "  %s\n", f)
	}
	return nil
}
