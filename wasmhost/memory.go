package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	httpadapter "github.com/wippyai/http-adapter"
	"github.com/wippyai/http-adapter/errors"
)

// Memory adapts wazero api.Memory to httpadapter.Memory.
type Memory struct {
	Mem api.Memory
}

var _ httpadapter.Memory = (*Memory)(nil)

// Read reads bytes from memory. The result aliases guest memory.
func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseBind, offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseBind, offset, uint32(len(data)))
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *Memory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseBind, offset, 1)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseBind, offset, 4)
	}
	return v, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (m *Memory) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return errors.OutOfBounds(errors.PhaseBind, offset, 1)
	}
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseBind, offset, 4)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (m *Memory) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseBind, offset, 8)
	}
	return nil
}

// Realloc adapts the guest's cabi_realloc export to httpadapter.Allocator.
type Realloc struct {
	Ctx context.Context
	Fn  api.Function
}

var _ httpadapter.Allocator = (*Realloc)(nil)

// Alloc allocates memory using cabi_realloc.
func (a *Realloc) Alloc(size, align uint32) (uint32, error) {
	if a.Fn == nil {
		return 0, errors.New(errors.PhaseBind, errors.KindAllocation).
			Detail("guest does not export %s", ReallocExport).
			Build()
	}
	results, err := a.Fn.Call(a.Ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseBind, errors.KindAllocation, err, "cabi_realloc trapped")
	}
	if len(results) == 0 {
		return 0, errors.AllocationFailed(errors.PhaseBind, size, align)
	}
	return api.DecodeU32(results[0]), nil
}

// lowerer writes values into guest memory, faulting the call on any error.
type lowerer struct {
	mem   httpadapter.Memory
	alloc httpadapter.Allocator
}

func (l *lowerer) must(err error) {
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			errors.Raise(e)
		}
		errors.Raise(errors.Wrap(errors.PhaseBind, errors.KindInvalidData, err, "guest memory"))
	}
}

func (l *lowerer) readBytes(ptr, n uint32) []byte {
	p, err := l.mem.Read(ptr, n)
	l.must(err)
	return append([]byte(nil), p...)
}

func (l *lowerer) readString(ptr, n uint32) string {
	p, err := l.mem.Read(ptr, n)
	l.must(err)
	return string(p)
}

func (l *lowerer) readU32(ptr uint32) uint32 {
	v, err := l.mem.ReadU32(ptr)
	l.must(err)
	return v
}

// readStrings reads a list<string>: 8-byte elements of (ptr, len).
func (l *lowerer) readStrings(ptr, n uint32) []string {
	out := make([]string, n)
	for i := uint32(0); i < n; i++ {
		elem := ptr + i*8
		out[i] = l.readString(l.readU32(elem), l.readU32(elem+4))
	}
	return out
}

// readPairs reads a list<tuple<string,string>>: 16-byte elements.
func (l *lowerer) readPairs(ptr, n uint32) [][2]string {
	out := make([][2]string, n)
	for i := uint32(0); i < n; i++ {
		elem := ptr + i*16
		out[i][0] = l.readString(l.readU32(elem), l.readU32(elem+4))
		out[i][1] = l.readString(l.readU32(elem+8), l.readU32(elem+12))
	}
	return out
}

func (l *lowerer) allocate(size, align uint32) uint32 {
	if size == 0 {
		return align
	}
	ptr, err := l.alloc.Alloc(size, align)
	l.must(err)
	return ptr
}

// putBytes copies p into freshly allocated guest memory.
func (l *lowerer) putBytes(p []byte) (ptr, n uint32) {
	ptr = l.allocate(uint32(len(p)), 1)
	if len(p) > 0 {
		l.must(l.mem.Write(ptr, p))
	}
	return ptr, uint32(len(p))
}

func (l *lowerer) putString(s string) (ptr, n uint32) {
	return l.putBytes([]byte(s))
}

// putStringAt stores a string's (ptr, len) at addr.
func (l *lowerer) putStringAt(addr uint32, s string) {
	ptr, n := l.putString(s)
	l.putU32(addr, ptr)
	l.putU32(addr+4, n)
}

// putStrings allocates a list<string> and stores its (ptr, len) at addr.
func (l *lowerer) putStrings(addr uint32, values []string) {
	base := l.allocate(uint32(len(values))*8, 4)
	for i, v := range values {
		l.putStringAt(base+uint32(i)*8, v)
	}
	l.putU32(addr, base)
	l.putU32(addr+4, uint32(len(values)))
}

// putPairs allocates a list<tuple<string,string>> and stores its (ptr, len) at addr.
func (l *lowerer) putPairs(addr uint32, pairs [][2]string) {
	base := l.allocate(uint32(len(pairs))*16, 4)
	for i, p := range pairs {
		elem := base + uint32(i)*16
		l.putStringAt(elem, p[0])
		l.putStringAt(elem+8, p[1])
	}
	l.putU32(addr, base)
	l.putU32(addr+4, uint32(len(pairs)))
}

func (l *lowerer) putU8(addr uint32, v uint8) {
	l.must(l.mem.WriteU8(addr, v))
}

func (l *lowerer) putU32(addr uint32, v uint32) {
	l.must(l.mem.WriteU32(addr, v))
}

func (l *lowerer) putU64(addr uint32, v uint64) {
	l.must(l.mem.WriteU64(addr, v))
}
