package armv7

// InstructionSet selects the active decoder and PC increment unit.
type InstructionSet int

const (
	ISetThumb InstructionSet = iota // 16/32-bit mixed encoding
	ISetARM                         // fixed 32-bit encoding
)

// String returns the conventional name of the instruction set.
func (s InstructionSet) String() string {
	if s == ISetARM {
		return "ARM"
	}
	return "Thumb"
}

// APSR holds the four application-level condition flags.
type APSR struct {
	N bool // negative (bit 31 of the last flag-setting result)
	Z bool // zero
	C bool // carry / no-borrow / last bit shifted out
	V bool // signed overflow
}

// SetNZ updates the N and Z flags from a result.
func (a *APSR) SetNZ(result uint32) {
	a.N = result&signBit != 0
	a.Z = result == 0
}

// SetNZC updates N, Z and the carry flag. Logical and shift
// instructions use this form; V is unaffected.
func (a *APSR) SetNZC(result uint32, carry bool) {
	a.SetNZ(result)
	a.C = carry
}

// SetNZCV updates all four flags. Add/subtract instructions use this form.
func (a *APSR) SetNZCV(result uint32, carry, overflow bool) {
	a.SetNZ(result)
	a.C = carry
	a.V = overflow
}

// ToUint32 packs the flags into APSR bit positions 31-28.
func (a *APSR) ToUint32() uint32 {
	var v uint32
	if a.N {
		v |= 1 << 31
	}
	if a.Z {
		v |= 1 << 30
	}
	if a.C {
		v |= 1 << 29
	}
	if a.V {
		v |= 1 << 28
	}
	return v
}

// FromUint32 unpacks flags from APSR bit positions 31-28.
func (a *APSR) FromUint32(v uint32) {
	a.N = v&(1<<31) != 0
	a.Z = v&(1<<30) != 0
	a.C = v&(1<<29) != 0
	a.V = v&(1<<28) != 0
}

// ITState is the 8-bit if-then execution state: the condition of the
// current slot in the high four bits and the block mask in the low
// bits. A zero value means "not inside an IT block".
type ITState struct {
	raw uint8
}

// Active reports whether an IT block is in progress.
func (it *ITState) Active() bool {
	return it.raw != 0
}

// Value returns the raw 8-bit state.
func (it *ITState) Value() uint8 {
	return it.raw
}

// Set writes the raw state. The IT instruction stores its firstcond and
// mask fields here unchanged.
func (it *ITState) Set(v uint8) {
	it.raw = v
}

// Advance returns the condition that applies to the current instruction
// and consumes one slot. Outside an IT block it returns condAlways.
// The mask shifts left one bit per slot; a mask whose low three bits are
// already zero marks the final slot, after which the state clears. The
// bit entering position 4 supplies the condition low bit of the next
// slot, which is how "else" slots invert the base condition.
func (it *ITState) Advance() uint32 {
	if it.raw == 0 {
		return condAlways
	}
	cond := uint32(it.raw >> 4)
	if it.raw&0x7 != 0 {
		it.raw = it.raw&0xe0 | it.raw<<1&0x1f
	} else {
		it.raw = 0
	}
	return cond
}

// General-purpose register aliases.
const (
	RegSP = 13 // stack pointer
	RegLR = 14 // link register
	RegPC = 15 // program counter (never a GPR slot, see Context.ReadGPR)
)

// Context is the per-thread architectural state: the register file,
// the flags, the if-then state, the active instruction set and the
// exclusive-access monitor. A context is owned by exactly one Thread
// and is never shared between host goroutines; only the guest memory
// behind Mem is shared.
//
// The exclusive monitor is a local approximation of the ARM
// global/local monitor pair: RAddr/RData capture the address and value
// seen by the last LDREX, and STREX succeeds iff a compare-and-swap of
// that value still holds. A write-then-restore of the same word by
// another thread between the two is therefore not detected.
type Context struct {
	GPR  [15]uint32 // R0-R12, SP (13), LR (14)
	APSR APSR
	IT   ITState
	ISet InstructionSet

	// Exclusive monitor. RAddr == 0 means no outstanding reservation.
	RAddr uint32
	RData uint32

	Thread *Thread
	Mem    *Memory
}

// ReadGPR returns the value of register n. Register 15 reads as the
// current instruction address plus 4 in both instruction sets; the
// architectural ARM-mode value would be plus 8, a difference this core
// deliberately flattens for PSV code.
func (ctx *Context) ReadGPR(n uint32) uint32 {
	if n == RegPC {
		return ctx.Thread.PC + 4
	}
	return ctx.GPR[n]
}

// WriteGPR sets register n. A write to register 15 is an interworking
// branch: bit 0 selects Thumb and is cleared from the target. POP and
// LDR into the PC route through here.
func (ctx *Context) WriteGPR(n uint32, value uint32) {
	if n == RegPC {
		if value&1 != 0 {
			ctx.ISet = ISetThumb
			ctx.Thread.SetBranch(value &^ 1)
		} else {
			ctx.ISet = ISetARM
			ctx.Thread.SetBranch(value)
		}
		return
	}
	ctx.GPR[n] = value
}

// SP returns the stack pointer.
func (ctx *Context) SP() uint32 {
	return ctx.GPR[RegSP]
}

// SetSP sets the stack pointer.
func (ctx *Context) SetSP(value uint32) {
	ctx.GPR[RegSP] = value
}

// LR returns the link register.
func (ctx *Context) LR() uint32 {
	return ctx.GPR[RegLR]
}

// SetLR sets the link register.
func (ctx *Context) SetLR(value uint32) {
	ctx.GPR[RegLR] = value
}

// ClearExclusive drops any outstanding LDREX reservation.
func (ctx *Context) ClearExclusive() {
	ctx.RAddr = 0
	ctx.RData = 0
}
