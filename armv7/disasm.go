package armv7

import (
	"fmt"
)

// Lightweight disassembly for the debugger views and traces: the
// resolved mnemonic, the encoding variant, and the raw word. Operand
// rendering is deliberately out of scope; the views pair this with the
// register panel.

// DisasmEntry is one decoded location.
type DisasmEntry struct {
	Addr     uint32
	Code     Code
	Size     uint32
	Mnemonic string
	Encoding Encoding
}

// String renders the entry in the fixed column format the TUI shows.
func (e DisasmEntry) String() string {
	if e.Size == 2 {
		return fmt.Sprintf("0x%08X  %04X      %s (%s)", e.Addr, uint16(e.Code), e.Mnemonic, e.Encoding)
	}
	return fmt.Sprintf("0x%08X  %08X  %s (%s)", e.Addr, uint32(e.Code), e.Mnemonic, e.Encoding)
}

// DisassembleAt resolves the instruction at addr in the given
// instruction set without executing it.
func DisassembleAt(mem *Memory, addr uint32, iset InstructionSet) (DisasmEntry, error) {
	if iset == ISetARM {
		w, err := mem.Read32(addr)
		if err != nil {
			return DisasmEntry{}, err
		}
		h := decodeARM(w)
		return DisasmEntry{Addr: addr, Code: Code(w), Size: 4, Mnemonic: h.name, Encoding: h.enc}, nil
	}

	hw, err := mem.Read16(addr)
	if err != nil {
		return DisasmEntry{}, err
	}
	if isThumb32(hw) {
		hw2, err := mem.Read16(addr + 2)
		if err != nil {
			return DisasmEntry{}, err
		}
		w := uint32(hw)<<16 | uint32(hw2)
		h := decodeThumb32(w)
		return DisasmEntry{Addr: addr, Code: Code(w), Size: 4, Mnemonic: h.name, Encoding: h.enc}, nil
	}
	h := decodeThumb16(hw)
	return DisasmEntry{Addr: addr, Code: Code(hw), Size: 2, Mnemonic: h.name, Encoding: h.enc}, nil
}

// DisassembleRange resolves up to count instructions starting at addr.
// It stops early at the first unreadable location.
func DisassembleRange(mem *Memory, addr uint32, iset InstructionSet, count int) []DisasmEntry {
	entries := make([]DisasmEntry, 0, count)
	for i := 0; i < count; i++ {
		e, err := DisassembleAt(mem, addr, iset)
		if err != nil {
			break
		}
		entries = append(entries, e)
		addr += e.Size
	}
	return entries
}
