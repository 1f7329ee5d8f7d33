package wasmhost

import (
	"github.com/tetratelabs/wazero/api"
)

// wasmBuilder assembles small core modules for tests. Imports must be added
// before functions so indexes stay stable.
type wasmBuilder struct {
	types   [][]byte
	imports [][]byte
	funcs   []uint32
	codes   [][]byte
	exports [][]byte
	data    [][]byte
	heap    bool
}

const (
	opEnd       = 0x0b
	opCall      = 0x10
	opDrop      = 0x1a
	opLocalGet  = 0x20
	opLocalSet  = 0x21
	opLocalTee  = 0x22
	opGlobalGet = 0x23
	opGlobalSet = 0x24
	opI32Load   = 0x28
	opI32Const  = 0x41
	opI64Const  = 0x42
	opI32Add    = 0x6a
	opI32Sub    = 0x6b
	opI32And    = 0x71
)

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func name(s string) []byte {
	return append(uleb(uint64(len(s))), s...)
}

func vec(items [][]byte) []byte {
	out := uleb(uint64(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func section(id byte, items [][]byte) []byte {
	if len(items) == 0 {
		return nil
	}
	body := vec(items)
	return append(append([]byte{id}, uleb(uint64(len(body)))...), body...)
}

func (b *wasmBuilder) typ(params, results []api.ValueType) uint32 {
	t := append([]byte{0x60}, uleb(uint64(len(params)))...)
	t = append(t, params...)
	t = append(t, uleb(uint64(len(results)))...)
	t = append(t, results...)
	b.types = append(b.types, t)
	return uint32(len(b.types) - 1)
}

// importFunc imports module#fn with the given core signature.
func (b *wasmBuilder) importFunc(module, fn string, params, results []api.ValueType) uint32 {
	t := b.typ(params, results)
	imp := append(name(module), name(fn)...)
	imp = append(imp, 0x00)
	imp = append(imp, uleb(uint64(t))...)
	b.imports = append(b.imports, imp)
	return uint32(len(b.imports) - 1)
}

// importAdapter imports an adapter function with its bound signature.
func (b *wasmBuilder) importAdapter(module, fn string) uint32 {
	f, ok := lookup(module, fn)
	if !ok {
		panic("unknown adapter function " + module + "#" + fn)
	}
	params, results := f.sig.Lower()
	return b.importFunc(module, fn, params, results)
}

// function adds a function with extra i32 locals and returns its index.
func (b *wasmBuilder) function(params, results []api.ValueType, locals int, code ...[]byte) uint32 {
	t := b.typ(params, results)
	b.funcs = append(b.funcs, t)

	var body []byte
	if locals > 0 {
		body = append(body, uleb(1)...)
		body = append(body, uleb(uint64(locals))...)
		body = append(body, api.ValueTypeI32)
	} else {
		body = append(body, uleb(0)...)
	}
	for _, c := range code {
		body = append(body, c...)
	}
	body = append(body, opEnd)
	b.codes = append(b.codes, append(uleb(uint64(len(body))), body...))
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

func (b *wasmBuilder) export(n string, idx uint32) {
	e := append(name(n), 0x00)
	b.exports = append(b.exports, append(e, uleb(uint64(idx))...))
}

func (b *wasmBuilder) segment(offset int32, p []byte) {
	seg := []byte{0x00, opI32Const}
	seg = append(seg, sleb(int64(offset))...)
	seg = append(seg, opEnd)
	seg = append(seg, uleb(uint64(len(p)))...)
	b.data = append(b.data, append(seg, p...))
}

// withRealloc adds a bump allocator export starting at 1024.
func (b *wasmBuilder) withRealloc() {
	b.heap = true
	i32 := api.ValueTypeI32
	idx := b.function([]api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}, 1,
		// ptr = (heap + align - 1) & -align
		ins(opGlobalGet, 0), ins(opLocalGet, 2), []byte{opI32Add}, i32c(1), []byte{opI32Sub},
		i32c(0), ins(opLocalGet, 2), []byte{opI32Sub}, []byte{opI32And},
		ins(opLocalTee, 4),
		ins(opLocalGet, 3), []byte{opI32Add}, ins(opGlobalSet, 0),
		ins(opLocalGet, 4),
	)
	b.export(ReallocExport, idx)
}

func (b *wasmBuilder) bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, section(1, b.types)...)
	out = append(out, section(2, b.imports)...)

	funcs := make([][]byte, len(b.funcs))
	for i, t := range b.funcs {
		funcs[i] = uleb(uint64(t))
	}
	out = append(out, section(3, funcs)...)
	out = append(out, section(5, [][]byte{{0x00, 0x01}})...)
	if b.heap {
		global := []byte{api.ValueTypeI32, 0x01, opI32Const}
		global = append(global, sleb(1024)...)
		global = append(global, opEnd)
		out = append(out, section(6, [][]byte{global})...)
	}

	exports := append([][]byte{append(name(MemoryExport), 0x02, 0x00)}, b.exports...)
	out = append(out, section(7, exports)...)
	out = append(out, section(10, b.codes)...)
	out = append(out, section(11, b.data)...)
	return out
}

func ins(op byte, idx uint32) []byte {
	return append([]byte{op}, uleb(uint64(idx))...)
}

func i32c(v int32) []byte {
	return append([]byte{opI32Const}, sleb(int64(v))...)
}

func i64c(v int64) []byte {
	return append([]byte{opI64Const}, sleb(v)...)
}

// load reads the i32 at a constant address.
func load(addr int32) []byte {
	return append(i32c(addr), opI32Load, 0x02, 0x00)
}
