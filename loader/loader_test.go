package loader

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/neeevans/rpcs3/armv7"
)

// thumbImage packs halfwords into a little-endian byte image.
func thumbImage(halfwords ...uint16) []byte {
	data := make([]byte, len(halfwords)*2)
	for i, hw := range halfwords {
		binary.LittleEndian.PutUint16(data[i*2:], hw)
	}
	return data
}

func TestLoadBytesIntoDefaultSegment(t *testing.T) {
	mem := armv7.NewMemory()
	img, err := LoadBytes(mem, thumbImage(0x2005), armv7.CodeSegmentStart)
	if err != nil {
		t.Fatal(err)
	}
	if img.Entry != armv7.CodeSegmentStart|1 {
		t.Errorf("entry = 0x%08X, want Thumb bit set", img.Entry)
	}

	hw, err := mem.Read16(armv7.CodeSegmentStart)
	if err != nil {
		t.Fatal(err)
	}
	if hw != 0x2005 {
		t.Errorf("memory = 0x%04X, want 0x2005", hw)
	}
}

func TestLoadBytesMapsUnmappedBase(t *testing.T) {
	mem := armv7.NewMemory()
	base := uint32(0x40000000)
	if _, err := LoadBytes(mem, thumbImage(0xBF00), base); err != nil {
		t.Fatal(err)
	}
	if _, err := mem.Read16(base); err != nil {
		t.Errorf("image base not mapped: %v", err)
	}
}

func TestLoadedImageRuns(t *testing.T) {
	mem := armv7.NewMemory()
	calls := armv7.NewHostCallTable()
	armv7.RegisterDefaultServices(calls)

	path := filepath.Join(t.TempDir(), "prog.bin")
	// MOVS R0, #9; exit(R0).
	img := thumbImage(0x2009, 0xF7F0, uint16(armv7.CallExitProcess))
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(mem, path, armv7.CodeSegmentStart)
	if err != nil {
		t.Fatal(err)
	}

	th := NewMainThread(mem, calls, loaded, 0)
	if err := th.Run(); err != nil {
		t.Fatal(err)
	}
	if th.ExitCode != 9 {
		t.Errorf("exit code = %d, want 9", th.ExitCode)
	}
}
