// Package cache implements the JIT's code cache: a fixed-size executable
// memory arena holding concatenated compiled blocks, with an append
// cursor and a coarse, whole-arena reset. See spec.md §4.1.
package cache

import (
	"fmt"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// DefaultSize is the default code cache capacity in bytes (256 KiB per
// spec.md §4.1's example).
const DefaultSize = 256 * 1024

// HighWaterFraction is the fraction of capacity at which the JIT core
// resets the cache before compiling a new block (≈80% per spec.md §4.1).
const HighWaterFraction = 0.8

// Cache is an append-only executable memory arena.
type Cache struct {
	mem    mmap.MMap
	cursor int
	log    *logrus.Entry
}

// New mmaps a region of the given size and makes it readable, writable and
// executable at once with a single golang.org/x/sys/unix Mprotect call
// (mmap-go exposes no Mprotect primitive). Permissions are never changed
// afterwards, so platforms that refuse RWX mappings fail here.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap code cache: %w", err)
	}
	if err := unix.Mprotect(m, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return nil, fmt.Errorf("mprotect code cache executable: %w", err)
	}
	return &Cache{
		mem: m,
		log: logrus.WithField("component", "jit.cache"),
	}, nil
}

// Append copies code to the cache's current cursor and advances it,
// returning the offset the code was written at.
func (c *Cache) Append(code []byte) (offset int) {
	offset = c.cursor
	n := copy(c.mem[c.cursor:], code)
	c.cursor += n
	return offset
}

// Size returns the number of bytes appended since the last Reset.
func (c *Cache) Size() int { return c.cursor }

// Capacity returns the cache's total mapped size.
func (c *Cache) Capacity() int { return len(c.mem) }

// NeedsReset reports whether the cache has crossed its high-water mark
// and should be reset before compiling another block.
func (c *Cache) NeedsReset() bool {
	return float64(c.cursor) >= float64(len(c.mem))*HighWaterFraction
}

// Reset rewinds the append cursor, discarding all compiled code. Memory
// contents are left in place; they're simply overwritten by future
// appends and never read past the cursor.
func (c *Cache) Reset() {
	c.log.Debug("resetting code cache")
	c.cursor = 0
}

// Bytes returns a read-only view of the cache contents written so far,
// for disassembly.
func (c *Cache) Bytes() []byte {
	return c.mem[:c.cursor]
}

// Call invokes the compiled block at offset using the host C calling
// convention for a function taking no arguments and returning uint64,
// and returns its result (the executed-instruction count, see spec.md §4.1).
func (c *Cache) Call(offset int) uint64 {
	codePtr := uintptr(unsafe.Pointer(&c.mem[offset]))
	// A Go func value points at a word holding the entry address.
	funcVal := &codePtr
	fn := *(*func() uint64)(unsafe.Pointer(&funcVal))
	return fn()
}

// Close unmaps the cache's backing memory.
func (c *Cache) Close() error {
	return c.mem.Unmap()
}
