package armv7

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// Default guest address-space layout. Loaders may add further segments
// (a PSV image can ask for any base address).
const (
	CodeSegmentStart  = 0x81000000
	CodeSegmentSize   = 0x00400000 // 4MB
	DataSegmentStart  = 0x82000000
	DataSegmentSize   = 0x00400000 // 4MB
	StackSegmentStart = 0x8f000000
	StackSegmentSize  = 0x00100000 // 1MB per main thread
)

// Permission bits for a memory segment.
type Permission byte

const (
	PermRead    Permission = 1 << 0
	PermWrite   Permission = 1 << 1
	PermExecute Permission = 1 << 2
)

// Segment is a contiguous mapped region of the guest address space.
type Segment struct {
	Start       uint32
	Size        uint32
	Data        []byte
	Permissions Permission
	Name        string
}

// Memory is the flat little-endian guest address space. It is shared by
// every guest thread. Plain loads and stores are relaxed: they carry no
// ordering beyond what the host provides and no alignment enforcement,
// matching PSV user-mode behavior. CompareAndSwap32 is the single
// atomic primitive, backing STREX.
type Memory struct {
	Segments []*Segment

	// casMu serializes CompareAndSwap32 calls. Plain accesses do not
	// take it; the monitor emulation only needs the CAS itself to be
	// atomic with respect to other CAS calls.
	casMu sync.Mutex
}

// NewMemory creates a guest address space with the default segments.
func NewMemory() *Memory {
	m := &Memory{}
	m.AddSegment("code", CodeSegmentStart, CodeSegmentSize, PermRead|PermWrite|PermExecute)
	m.AddSegment("data", DataSegmentStart, DataSegmentSize, PermRead|PermWrite)
	m.AddSegment("stack", StackSegmentStart, StackSegmentSize, PermRead|PermWrite)
	return m
}

// AddSegment maps a new region.
func (m *Memory) AddSegment(name string, start, size uint32, perms Permission) {
	m.Segments = append(m.Segments, &Segment{
		Start:       start,
		Size:        size,
		Data:        make([]byte, size),
		Permissions: perms,
		Name:        name,
	})
}

// slice returns the backing bytes for [addr, addr+size) with the
// required permission, or an error for unmapped or denied access.
func (m *Memory) slice(addr, size uint32, perm Permission) ([]byte, error) {
	for _, seg := range m.Segments {
		if addr >= seg.Start && addr-seg.Start < seg.Size {
			offset := addr - seg.Start
			if seg.Permissions&perm == 0 {
				return nil, fmt.Errorf("access denied for segment '%s' at 0x%08X", seg.Name, addr)
			}
			if offset+size > seg.Size {
				return nil, fmt.Errorf("access exceeds segment '%s' bounds at 0x%08X", seg.Name, addr)
			}
			return seg.Data[offset : offset+size], nil
		}
	}
	return nil, fmt.Errorf("memory access violation: address 0x%08X is not mapped", addr)
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) (uint8, error) {
	b, err := m.slice(addr, 1, PermRead)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint32) (uint16, error) {
	b, err := m.slice(addr, 2, PermRead)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	b, err := m.slice(addr, 4, PermRead)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Read64 reads a little-endian doubleword.
func (m *Memory) Read64(addr uint32) (uint64, error) {
	b, err := m.slice(addr, 8, PermRead)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) error {
	b, err := m.slice(addr, 1, PermWrite)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint32, value uint16) error {
	b, err := m.slice(addr, 2, PermWrite)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, value)
	return nil
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, value uint32) error {
	b, err := m.slice(addr, 4, PermWrite)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, value)
	return nil
}

// Write64 writes a little-endian doubleword.
func (m *Memory) Write64(addr uint32, value uint64) error {
	b, err := m.slice(addr, 8, PermWrite)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, value)
	return nil
}

// CompareAndSwap32 atomically compares the word at addr against old
// and, if equal, replaces it with new. It returns the prior value; the
// swap happened iff the prior value equals old. STREX is built on this.
func (m *Memory) CompareAndSwap32(addr, old, new uint32) (uint32, error) {
	m.casMu.Lock()
	defer m.casMu.Unlock()

	b, err := m.slice(addr, 4, PermRead|PermWrite)
	if err != nil {
		return 0, err
	}
	prior := binary.LittleEndian.Uint32(b)
	if prior == old {
		binary.LittleEndian.PutUint32(b, new)
	}
	return prior, nil
}

// LoadBytes copies data into memory starting at addr.
func (m *Memory) LoadBytes(addr uint32, data []byte) error {
	b, err := m.slice(addr, uint32(len(data)), PermWrite)
	if err != nil {
		return fmt.Errorf("failed to load %d bytes at 0x%08X: %w", len(data), addr, err)
	}
	copy(b, data)
	return nil
}

// GetBytes copies length bytes out of memory starting at addr.
func (m *Memory) GetBytes(addr, length uint32) ([]byte, error) {
	b, err := m.slice(addr, length, PermRead)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, b)
	return out, nil
}

// CheckExecutePermission reports whether addr may be fetched from.
func (m *Memory) CheckExecutePermission(addr uint32) error {
	_, err := m.slice(addr, 2, PermExecute)
	return err
}

// Reset zeroes every segment.
func (m *Memory) Reset() {
	for _, seg := range m.Segments {
		clear(seg.Data)
	}
}
