// Package bus defines the minimal word bus the storage controller needs
// from "the rest of the machine", plus a RAM-backed implementation that
// stands in for host memory when driving the controller standalone.
package bus

import "encoding/binary"

// Word is the bus transaction width. The storage controller's register
// map and DMA transfers are defined in 32-bit fields, so a Word is four
// bytes, little-endian on the wire.
type Word = uint32

// Bus is the synchronous, byte-addressable interface the controller uses
// for DMA against host memory. Its own MMIO register file is served by
// Controller.OnRead/OnWrite, not through a Bus.
// Implementations must not block or reschedule; a call either completes
// or the caller has nothing further to do with this transaction.
type Bus interface {
	Read(addr uint32) Word
	Write(addr uint32, value Word)
}

// HostRAM is a flat byte-addressable RAM implementing Bus, standing in for
// the host memory the controller DMAs against (submission/completion
// queues and data buffers) when no larger system bus is wired in.
type HostRAM struct {
	mem []byte
}

// NewHostRAM allocates size bytes of zeroed RAM.
func NewHostRAM(size int) *HostRAM {
	return &HostRAM{mem: make([]byte, size)}
}

func (r *HostRAM) Read(addr uint32) Word {
	if int(addr)+4 > len(r.mem) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.mem[addr : addr+4])
}

func (r *HostRAM) Write(addr uint32, value Word) {
	if int(addr)+4 > len(r.mem) {
		return
	}
	binary.LittleEndian.PutUint32(r.mem[addr:addr+4], value)
}

// Bytes exposes the backing slice directly, mirroring the teacher's
// GetMemory() escape hatch for tests that need to seed or inspect RAM
// without going through word-granular Read/Write.
func (r *HostRAM) Bytes() []byte {
	return r.mem
}
