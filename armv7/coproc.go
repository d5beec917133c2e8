package armv7

import (
	"fmt"
	"log"
)

// HACK is the non-architectural escape opcode carved out of the UDF
// space: guest imports are patched to it at load time and carry the
// host-call table index in the instruction word. MRC is accepted only
// for the user-readable thread-ID register; every other coprocessor
// access fails.

func hack(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, fn uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		fn = data & 0xffff
	case A1:
		cond = data >> 28
		fn = (data&0xfff00)>>4 | data&0xf
	default:
		return notImplErr("HACK", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	return ctx.Thread.Calls.Execute(ctx, uint16(fn))
}

func mrc(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, t, cp, opc1, opc2, cn, cm uint32

	switch enc {
	case T1, A1:
		cond = ctx.IT.Advance()
		t = (data & 0xf000) >> 12
		cp = (data & 0xf00) >> 8
		opc1 = (data & 0xe00000) >> 21
		opc2 = (data & 0xe0) >> 5
		cn = (data & 0xf0000) >> 16
		cm = data & 0xf

		if cp == 10 || cp == 11 {
			return opErr("MRC", enc, "cp == 10 || cp == 11", "Advanced SIMD and VFP")
		}
		if t == 13 && enc == T1 {
			return opErr("MRC", enc, "t == 13", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MRC", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	if cp == 15 && opc1 == 0 && cn == 13 && cm == 0 && opc2 == 3 {
		// User RO thread-ID register (TPIDRURO). No TLS allocator is
		// wired up, so the read produces zero.
		log.Printf("armv7: TODO: TLS register requested")

		if t < 15 {
			ctx.WriteGPR(t, 0)
			return nil
		}
	}

	return fmt.Errorf("bad instruction: mrc p%d,%d,r%d,c%d,c%d,%d", cp, opc1, t, cn, cm, opc2)
}
