package httpadapter

// Memory is guest linear memory as seen by host functions.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU32(offset uint32) (uint32, error)
	WriteU8(offset uint32, value uint8) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// Allocator allocates in guest linear memory. Values returned to the guest
// (strings, lists) are placed in memory obtained here.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
}
