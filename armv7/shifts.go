package armv7

// Shift instruction routines. The immediate forms reject an encoded
// amount of zero where the ARMARM redefines the pattern as another
// instruction (LSL #0 is MOV (register); ROR #0 is RRX); the dispatcher
// routes those patterns elsewhere, so seeing them here is a bug.

// shiftImm implements the immediate-shift mnemonics over a shared
// skeleton; only the shift type differs.
func shiftImm(ctx *Context, code Code, enc Encoding, mnemonic string, shiftT ShiftType) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, m, shiftN uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		m = (data & 0x38) >> 3
		_, shiftN = DecodeImmShift(uint32(shiftT), (data&0x7c0)>>6)

		if shiftT == ShiftLSL && shiftN == 0 {
			return opErr(mnemonic, enc, "shift_n == 0", "MOV (register)")
		}
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf
		setFlags = data&0x100000 != 0
		_, shiftN = DecodeImmShift(uint32(shiftT), thumb32ImmShift(data))

		if shiftT == ShiftLSL && shiftN == 0 {
			return opErr(mnemonic, enc, "shift_n == 0", "MOV (register)")
		}
		if d == 13 || d == 15 || m == 13 || m == 15 {
			return opErr(mnemonic, enc, "d == 13 || d == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr(mnemonic, enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry := ShiftC(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func lslImm(ctx *Context, code Code, enc Encoding) error {
	return shiftImm(ctx, code, enc, "LSL (immediate)", ShiftLSL)
}

func lsrImm(ctx *Context, code Code, enc Encoding) error {
	return shiftImm(ctx, code, enc, "LSR (immediate)", ShiftLSR)
}

func asrImm(ctx *Context, code Code, enc Encoding) error {
	return shiftImm(ctx, code, enc, "ASR (immediate)", ShiftASR)
}

func rorImm(ctx *Context, code Code, enc Encoding) error {
	// ROR (immediate) has no 16-bit form; the dispatcher delivers the
	// 32-bit pattern as T1.
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, m, shiftN uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf
		setFlags = data&0x100000 != 0
		shiftN = thumb32ImmShift(data)

		if shiftN == 0 {
			return opErr("ROR (immediate)", enc, "shift_n == 0", "RRX")
		}
		if d == 13 || d == 15 || m == 13 || m == 15 {
			return opErr("ROR (immediate)", enc, "d == 13 || d == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("ROR (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry := ShiftC(ctx.ReadGPR(m), ShiftROR, shiftN, ctx.APSR.C)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func rrx(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, m uint32
	var setFlags bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf
		setFlags = data&0x100000 != 0

		if d == 13 || d == 15 || m == 13 || m == 15 {
			return opErr("RRX", enc, "d == 13 || d == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("RRX", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry := RRXC(ctx.ReadGPR(m), ctx.APSR.C)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

// shiftReg implements the register-shift mnemonics: the amount is the
// low byte of Rm.
func shiftReg(ctx *Context, code Code, enc Encoding, mnemonic string, shiftT ShiftType) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, m uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		n = d
		m = (data & 0x38) >> 3
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		setFlags = data&0x100000 != 0

		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 {
			return opErr(mnemonic, enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr(mnemonic, enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry := ShiftC(ctx.ReadGPR(n), shiftT, ctx.ReadGPR(m)&0xff, ctx.APSR.C)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func lslReg(ctx *Context, code Code, enc Encoding) error {
	return shiftReg(ctx, code, enc, "LSL (register)", ShiftLSL)
}

func lsrReg(ctx *Context, code Code, enc Encoding) error {
	return shiftReg(ctx, code, enc, "LSR (register)", ShiftLSR)
}

func asrReg(ctx *Context, code Code, enc Encoding) error {
	return shiftReg(ctx, code, enc, "ASR (register)", ShiftASR)
}

func rorReg(ctx *Context, code Code, enc Encoding) error {
	return shiftReg(ctx, code, enc, "ROR (register)", ShiftROR)
}
