package armv7

import (
	"fmt"
	"io"
)

// Diagnostic sinks. Both traces buffer entries and stream them to a
// writer so the TUI and tests can capture them without touching files.

// TraceEntry is one executed instruction.
type TraceEntry struct {
	Seq      uint64
	PC       uint32
	Code     Code
	Mnemonic string
}

// ExecutionTrace records every instruction the thread executes.
type ExecutionTrace struct {
	w       io.Writer
	seq     uint64
	Entries []TraceEntry
	// MaxEntries bounds the in-memory buffer; zero keeps everything.
	MaxEntries int
}

// NewExecutionTrace creates a trace streaming to w (which may be nil
// for buffer-only tracing).
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{w: w}
}

// Record appends one instruction to the trace.
func (t *ExecutionTrace) Record(pc uint32, code Code, mnemonic string) {
	e := TraceEntry{Seq: t.seq, PC: pc, Code: code, Mnemonic: mnemonic}
	t.seq++

	if t.MaxEntries == 0 || len(t.Entries) < t.MaxEntries {
		t.Entries = append(t.Entries, e)
	}
	if t.w != nil {
		fmt.Fprintf(t.w, "%8d  0x%08X  %08X  %s\n", e.Seq, e.PC, uint32(e.Code), e.Mnemonic)
	}
}

// FlagTraceEntry is the flag state after one instruction.
type FlagTraceEntry struct {
	Seq      uint64
	PC       uint32
	Mnemonic string
	Flags    APSR
}

// FlagTrace records the APSR after each instruction that changes it (the
// first recorded instruction is always kept), making flag regressions
// easy to bisect.
type FlagTrace struct {
	w       io.Writer
	Entries []FlagTraceEntry
	last    APSR
	primed  bool
}

// NewFlagTrace creates a flag trace streaming to w (may be nil).
func NewFlagTrace(w io.Writer) *FlagTrace {
	return &FlagTrace{w: w}
}

// Record notes the flag state after an instruction; only changes are
// kept.
func (t *FlagTrace) Record(seq uint64, pc uint32, mnemonic string, flags APSR) {
	if t.primed && flags == t.last {
		return
	}
	t.primed = true
	t.last = flags

	e := FlagTraceEntry{Seq: seq, PC: pc, Mnemonic: mnemonic, Flags: flags}
	t.Entries = append(t.Entries, e)

	if t.w != nil {
		f := func(b bool, s string) string {
			if b {
				return s
			}
			return "-"
		}
		fmt.Fprintf(t.w, "%8d  0x%08X  [%s%s%s%s]  %s\n", seq, pc,
			f(flags.N, "N"), f(flags.Z, "Z"), f(flags.C, "C"), f(flags.V, "V"), mnemonic)
	}
}
