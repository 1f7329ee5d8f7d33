package wasmhost

import (
	"context"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/http-adapter/adapter"
	"github.com/wippyai/http-adapter/errors"
)

const wasiModule = "wasi_snapshot_preview1"

// hostModuleMu serializes host module creation on shared runtimes.
var hostModuleMu sync.Mutex

// Option configures a Guest.
type Option func(*Guest)

// WithRuntime loads the guest into rt instead of a private runtime. The
// guest does not close rt.
func WithRuntime(rt wazero.Runtime) Option {
	return func(g *Guest) {
		g.runtime = rt
	}
}

// WithLogger sets the logger for guest lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(g *Guest) {
		if l != nil {
			g.log = l
		}
	}
}

// WithMemoryLimitPages caps guest memory in 64KiB pages. Ignored with
// WithRuntime.
func WithMemoryLimitPages(pages uint32) Option {
	return func(g *Guest) {
		g.memoryLimitPages = pages
	}
}

// Guest is a compiled wasi-http guest. It implements adapter.Handler by
// instantiating a fresh module per invocation, so it is safe for concurrent
// use with distinct States.
type Guest struct {
	runtime          wazero.Runtime
	compiled         wazero.CompiledModule
	log              *zap.Logger
	memoryLimitPages uint32
	ownsRuntime      bool
}

var _ adapter.Handler = (*Guest)(nil)

// NewGuest compiles wasm and checks that every adapter function it imports
// is bound with a matching signature.
func NewGuest(ctx context.Context, wasm []byte, opts ...Option) (*Guest, error) {
	g := &Guest{log: Logger()}
	for _, opt := range opts {
		opt(g)
	}
	if g.runtime == nil {
		cfg := wazero.NewRuntimeConfig()
		if g.memoryLimitPages > 0 {
			cfg = cfg.WithMemoryLimitPages(g.memoryLimitPages)
		}
		g.runtime = wazero.NewRuntimeWithConfig(ctx, cfg)
		g.ownsRuntime = true
	}

	compiled, err := g.runtime.CompileModule(ctx, wasm)
	if err != nil {
		g.closeRuntime(ctx)
		return nil, errors.Wrap(errors.PhaseBind, errors.KindInvalidData, err, "compile guest")
	}
	g.compiled = compiled

	if err := g.validate(); err != nil {
		_ = g.Close(ctx)
		return nil, err
	}
	if err := Instantiate(ctx, g.runtime, importsModule(compiled, wasiModule)); err != nil {
		_ = g.Close(ctx)
		return nil, err
	}

	g.log.Debug("guest compiled",
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Bool("wasi", importsModule(compiled, wasiModule)))
	return g, nil
}

func (g *Guest) validate() error {
	if _, ok := g.compiled.ExportedFunctions()[HandleExport]; !ok {
		return errors.NotFound(errors.PhaseBind, "export", HandleExport)
	}
	if _, ok := g.compiled.ExportedMemories()[MemoryExport]; !ok {
		return errors.NotFound(errors.PhaseBind, "memory export", MemoryExport)
	}
	return checkImports(g.compiled.ImportedFunctions())
}

// checkImports matches imports from the adapter modules against hostFuncs.
// Imports from other modules are left to instantiation.
func checkImports(defs []api.FunctionDefinition) error {
	var missing []string
	for _, def := range defs {
		module, name, _ := def.Import()
		if !isAdapterModule(module) {
			continue
		}
		f, ok := lookup(module, name)
		if !ok {
			missing = append(missing, module+"#"+name)
			continue
		}
		params, results := f.sig.Lower()
		if !slices.Equal(params, def.ParamTypes()) || !slices.Equal(results, def.ResultTypes()) {
			return errors.New(errors.PhaseBind, errors.KindInvalidData).
				Op(f.Path()).
				Detail("import signature %s does not match %s",
					signature(def.ParamTypes(), def.ResultTypes()), signature(params, results)).
				Build()
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingImportsError(missing)
	}
	return nil
}

func importsModule(compiled wazero.CompiledModule, module string) bool {
	for _, def := range compiled.ImportedFunctions() {
		if m, _, _ := def.Import(); m == module {
			return true
		}
	}
	return false
}

// Handle instantiates the guest and calls its incoming-handler export with
// req and out. Adapter calls made by the guest run against s.
func (g *Guest) Handle(ctx context.Context, s *adapter.State, req adapter.IncomingRequest, out adapter.ResponseOutparam) error {
	inv := &invocation{state: s, log: g.log}
	ctx = withInvocation(ctx, inv)

	cfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	mod, err := g.runtime.InstantiateModule(ctx, g.compiled, cfg)
	if err != nil {
		return errors.Instantiation(err)
	}
	defer mod.Close(ctx)

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return g.trapped(inv, "_initialize", err)
		}
	}

	if _, err := mod.ExportedFunction(HandleExport).Call(ctx, api.EncodeU32(uint32(req)), api.EncodeU32(uint32(out))); err != nil {
		return g.trapped(inv, HandleExport, err)
	}
	return nil
}

// trapped prefers the adapter error that caused the trap over wazero's.
func (g *Guest) trapped(inv *invocation, export string, err error) error {
	if inv.err != nil {
		return inv.err
	}
	g.log.Warn("guest trapped", zap.String("export", export), zap.Error(err))
	return errors.Trap(export, err)
}

// Close releases the compiled module and the runtime if the guest owns it.
func (g *Guest) Close(ctx context.Context) error {
	var err error
	if g.compiled != nil {
		err = g.compiled.Close(ctx)
	}
	g.closeRuntime(ctx)
	return err
}

func (g *Guest) closeRuntime(ctx context.Context) {
	if g.ownsRuntime {
		_ = g.runtime.Close(ctx)
	}
}

// Instantiate creates the adapter host modules in rt unless they exist.
// With wasi set it also provides wasi_snapshot_preview1.
func Instantiate(ctx context.Context, rt wazero.Runtime, wasi bool) error {
	hostModuleMu.Lock()
	defer hostModuleMu.Unlock()

	for _, module := range Modules() {
		if rt.Module(module) != nil {
			continue
		}
		builder := rt.NewHostModuleBuilder(module)
		for _, f := range hostFuncs {
			if f.module != module {
				continue
			}
			params, results := f.sig.Lower()
			builder.NewFunctionBuilder().
				WithGoModuleFunction(f.handler(), params, results).
				WithName(f.name).
				Export(f.name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Registration(module, "*", err)
		}
	}

	if wasi && rt.Module(wasiModule) == nil {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			return errors.Registration(wasiModule, "*", err)
		}
	}
	return nil
}

// handler wraps f as a wazero host function bound to the calling invocation.
func (f hostFunc) handler() api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		inv := invocationFrom(ctx)
		if inv == nil {
			errors.Raise(errors.InvalidInput(errors.PhaseBind, f.Path()+" called outside an invocation"))
		}
		defer inv.record(f.name)

		f.fn(&call{
			ctx:   ctx,
			s:     inv.state,
			stack: stack,
			lowerer: lowerer{
				mem:   &Memory{Mem: mod.Memory()},
				alloc: &Realloc{Ctx: ctx, Fn: mod.ExportedFunction(ReallocExport)},
			},
		})
	}
}

// Modules lists the adapter host module names.
func Modules() []string {
	return []string{TypesModule, StreamsModule, OutgoingHandlerModule}
}

func isAdapterModule(module string) bool {
	return slices.Contains(Modules(), module)
}

func lookup(module, name string) (hostFunc, bool) {
	for _, f := range hostFuncs {
		if f.module == module && f.name == name {
			return f, true
		}
	}
	return hostFunc{}, false
}

// Function describes a bound adapter function.
type Function struct {
	Module  string
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Functions lists every adapter function a guest may import, with its core
// signature.
func Functions() []Function {
	out := make([]Function, len(hostFuncs))
	for i, f := range hostFuncs {
		params, results := f.sig.Lower()
		out[i] = Function{Module: f.module, Name: f.name, Params: params, Results: results}
	}
	return out
}

// String renders the function as "module#name (params) -> (results)".
func (f Function) String() string {
	return f.Module + "#" + f.Name + " " + signature(f.Params, f.Results)
}

func signature(params, results []api.ValueType) string {
	return "(" + valueTypes(params) + ") -> (" + valueTypes(results) + ")"
}

func valueTypes(types []api.ValueType) string {
	var b []byte
	for i, t := range types {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, api.ValueTypeName(t)...)
	}
	return string(b)
}
