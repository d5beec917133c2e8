// Package loader places guest images into emulator memory and builds
// the main thread. Images are flat binaries of ARMv7 code; the entry
// address selects Thumb or ARM through its low bit.
package loader

import (
	"fmt"
	"os"

	"github.com/neeevans/rpcs3/armv7"
)

// Image describes a loaded guest binary.
type Image struct {
	Base  uint32
	Entry uint32
	Size  uint32
}

// LoadFile reads a flat binary from path into memory at base. If the
// default segments do not cover [base, base+len) a dedicated segment
// is mapped first.
func LoadFile(mem *armv7.Memory, path string, base uint32) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return LoadBytes(mem, data, base)
}

// LoadBytes places a flat binary into memory at base.
func LoadBytes(mem *armv7.Memory, data []byte, base uint32) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	if !covered(mem, base, uint32(len(data))) {
		mem.AddSegment(fmt.Sprintf("image@%08x", base), base, segmentSize(uint32(len(data))),
			armv7.PermRead|armv7.PermWrite|armv7.PermExecute)
	}

	if err := mem.LoadBytes(base, data); err != nil {
		return nil, fmt.Errorf("failed to place image at 0x%08X: %w", base, err)
	}

	return &Image{Base: base, Entry: base | 1, Size: uint32(len(data))}, nil
}

// NewMainThread builds the primary guest thread for an image: stack at
// the top of the stack segment, LR parked on an invalid return address
// so a stray return faults instead of wandering.
func NewMainThread(mem *armv7.Memory, calls *armv7.HostCallTable, img *Image, entry uint32) *armv7.Thread {
	if entry == 0 {
		entry = img.Entry
	}
	th := armv7.NewThread("main", mem, calls, entry)
	th.Ctx.SetSP(armv7.StackSegmentStart + armv7.StackSegmentSize)
	th.Ctx.SetLR(0xFFFFFFFF)
	return th
}

// covered reports whether [base, base+size) lies inside one mapped
// segment.
func covered(mem *armv7.Memory, base, size uint32) bool {
	for _, seg := range mem.Segments {
		if base >= seg.Start && base-seg.Start+size <= seg.Size {
			return true
		}
	}
	return false
}

// segmentSize rounds an image size up to a 64KB boundary so small
// images get room for adjacent data.
func segmentSize(n uint32) uint32 {
	const granule = 0x10000
	return (n + granule - 1) &^ (granule - 1)
}
