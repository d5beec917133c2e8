package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/neeevans/rpcs3/armv7"
)

// Debugger drives a guest thread interactively: stepping, running to
// breakpoints, and formatting machine state for the front ends.
type Debugger struct {
	Thread      *armv7.Thread
	Breakpoints *BreakpointManager

	// MaxRunInstructions bounds a single continue command.
	MaxRunInstructions uint64

	// Last error returned by the thread, kept for display.
	LastError error
}

// New creates a debugger over a thread.
func New(thread *armv7.Thread) *Debugger {
	return &Debugger{
		Thread:             thread,
		Breakpoints:        NewBreakpointManager(),
		MaxRunInstructions: 10_000_000,
	}
}

// Step executes one instruction.
func (d *Debugger) Step() error {
	err := d.Thread.Step()
	d.LastError = err
	return err
}

// Continue runs until a breakpoint, a halt, an error, or the run
// budget is exhausted.
func (d *Debugger) Continue() error {
	d.Thread.State = armv7.StateRunning

	for i := uint64(0); i < d.MaxRunInstructions; i++ {
		if err := d.Step(); err != nil {
			return err
		}
		if d.Thread.State != armv7.StateRunning {
			return nil
		}
		if d.Breakpoints.Check(d.Thread.PC) {
			d.Thread.State = armv7.StateBreakpoint
			return nil
		}
	}
	return fmt.Errorf("run budget of %d instructions exhausted", d.MaxRunInstructions)
}

// ResolveAddress parses a hex or decimal address. Hex is recognised by
// a 0x prefix or by a bare string containing a letter a-f; a string of
// digits only is decimal.
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty address")
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	} else if strings.ContainsAny(s, "abcdefABCDEF") {
		base = 16
	}

	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}

// FormatRegisters renders the register file and flags.
func (d *Debugger) FormatRegisters() string {
	var b strings.Builder
	ctx := &d.Thread.Ctx

	for i := 0; i < 13; i++ {
		fmt.Fprintf(&b, "R%-3d = 0x%08X", i, ctx.GPR[i])
		if i%2 == 1 {
			b.WriteByte('\n')
		} else {
			b.WriteString("   ")
		}
	}
	fmt.Fprintf(&b, "\nSP   = 0x%08X   LR   = 0x%08X\n", ctx.SP(), ctx.LR())
	fmt.Fprintf(&b, "PC   = 0x%08X   ISet = %s\n", d.Thread.PC, ctx.ISet)

	flag := func(v bool, name string) string {
		if v {
			return name
		}
		return "-"
	}
	fmt.Fprintf(&b, "APSR = [%s%s%s%s]",
		flag(ctx.APSR.N, "N"), flag(ctx.APSR.Z, "Z"),
		flag(ctx.APSR.C, "C"), flag(ctx.APSR.V, "V"))
	if ctx.IT.Active() {
		fmt.Fprintf(&b, "  IT=0x%02X", ctx.IT.Value())
	}
	b.WriteByte('\n')
	return b.String()
}

// FormatMemory renders a hex dump of length bytes at addr.
func (d *Debugger) FormatMemory(addr uint32, length uint32) string {
	var b strings.Builder

	for line := uint32(0); line < length; line += 16 {
		fmt.Fprintf(&b, "0x%08X: ", addr+line)
		for i := uint32(0); i < 16 && line+i < length; i++ {
			v, err := d.Thread.Ctx.Mem.Read8(addr + line + i)
			if err != nil {
				b.WriteString("?? ")
				continue
			}
			fmt.Fprintf(&b, "%02X ", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatDisassembly renders count instructions starting at addr,
// marking the current PC.
func (d *Debugger) FormatDisassembly(addr uint32, count int) string {
	var b strings.Builder
	for _, e := range armv7.DisassembleRange(d.Thread.Ctx.Mem, addr, d.Thread.Ctx.ISet, count) {
		marker := "  "
		if e.Addr == d.Thread.PC {
			marker = "> "
		}
		b.WriteString(marker)
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatStack renders the words around the stack pointer.
func (d *Debugger) FormatStack(words int) string {
	var b strings.Builder
	sp := d.Thread.Ctx.SP()

	for i := 0; i < words; i++ {
		addr := sp + uint32(i)*4
		v, err := d.Thread.Ctx.Mem.Read32(addr)
		if err != nil {
			break
		}
		marker := "   "
		if i == 0 {
			marker = "SP>"
		}
		fmt.Fprintf(&b, "%s 0x%08X: 0x%08X\n", marker, addr, v)
	}
	return b.String()
}
