package armv7

// Data-processing semantic routines. Every routine follows the same
// three phases: decode the operand fields for the delivered encoding
// variant (rejecting UNDEFINED / UNPREDICTABLE / aliased bit patterns),
// evaluate the condition, and commit the effect.
//
// The 16-bit Thumb encodings of these mnemonics are implicitly
// flag-setting outside an IT block and implicitly non-flag-setting
// inside one, so setFlags is sampled from the IT state at routine entry
// before the state advances.

// thumb32Imm12 reassembles the i:imm3:imm8 modified-immediate field of
// a 32-bit Thumb data-processing instruction.
func thumb32Imm12(data uint32) uint32 {
	return (data&0x4000000)>>15 | (data&0x7000)>>4 | data&0xff
}

// thumb32ImmShift reassembles the imm3:imm2 shift amount field.
func thumb32ImmShift(data uint32) uint32 {
	return (data&0x7000)>>10 | (data&0xc0)>>6
}

func addImm(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, imm32 uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		n = (data & 0x38) >> 3
		imm32 = (data & 0x1c0) >> 6
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0x700) >> 8
		n = d
		imm32 = data & 0xff
	case T3:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		setFlags = data&0x100000 != 0
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if d == 15 && setFlags {
			return opErr("ADD (immediate)", enc, "d == 15 && set_flags", "CMN (immediate)")
		}
		if n == 13 {
			return opErr("ADD (immediate)", enc, "n == 13", "ADD (SP plus immediate)")
		}
		if d == 13 || n == 15 {
			return opErr("ADD (immediate)", enc, "d == 13 || n == 15", "UNPREDICTABLE")
		}
	case T4:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		setFlags = false
		imm32 = thumb32Imm12(data)

		if n == 15 {
			return opErr("ADD (immediate)", enc, "n == 15", "ADR")
		}
		if n == 13 {
			return opErr("ADD (immediate)", enc, "n == 13", "ADD (SP plus immediate)")
		}
		if d == 13 || d == 15 {
			return opErr("ADD (immediate)", enc, "d == 13 || d == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("ADD (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	if setFlags {
		res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), imm32, false)
		ctx.WriteGPR(d, res)
		ctx.APSR.SetNZCV(res, carry, overflow)
	} else {
		ctx.WriteGPR(d, ctx.ReadGPR(n)+imm32)
	}
	return nil
}

func addReg(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, m, shiftN uint32
	shiftT := ShiftLSL

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		n = (data & 0x38) >> 3
		m = (data & 0x1c0) >> 6
	case T2:
		cond = ctx.IT.Advance()
		d = (data&0x80)>>4 | data&0x7
		n = d
		m = (data & 0x78) >> 3
		setFlags = false

		if n == 13 || m == 13 {
			return opErr("ADD (register)", enc, "n == 13 || m == 13", "ADD (SP plus register)")
		}
		if n == 15 && m == 15 {
			return opErr("ADD (register)", enc, "n == 15 && m == 15", "UNPREDICTABLE")
		}
		if d == 15 && ctx.IT.Active() {
			return opErr("ADD (register)", enc, "d == 15 && ITSTATE", "UNPREDICTABLE")
		}
	case T3:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		setFlags = data&0x100000 != 0
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if d == 15 && setFlags {
			return opErr("ADD (register)", enc, "d == 15 && set_flags", "CMN (register)")
		}
		if n == 13 {
			return opErr("ADD (register)", enc, "n == 13", "ADD (SP plus register)")
		}
		if d == 13 || n == 15 || m == 13 || m == 15 {
			return opErr("ADD (register)", enc, "d == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("ADD (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted := Shift(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	if setFlags {
		res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), shifted, false)
		ctx.WriteGPR(d, res)
		ctx.APSR.SetNZCV(res, carry, overflow)
	} else {
		ctx.WriteGPR(d, ctx.ReadGPR(n)+shifted)
	}
	return nil
}

func addSPImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, imm32 uint32
	var setFlags bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0x700) >> 8
		imm32 = (data & 0xff) << 2
	case T2:
		cond = ctx.IT.Advance()
		d = 13
		imm32 = (data & 0x7f) << 2
	case T3:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		setFlags = data&0x100000 != 0
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if d == 15 && setFlags {
			return opErr("ADD (SP plus immediate)", enc, "d == 15 && set_flags", "CMN (immediate)")
		}
		if d == 15 {
			return opErr("ADD (SP plus immediate)", enc, "d == 15", "UNPREDICTABLE")
		}
	case T4:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		imm32 = thumb32Imm12(data)

		if d == 15 {
			return opErr("ADD (SP plus immediate)", enc, "d == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("ADD (SP plus immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	if setFlags {
		res, carry, overflow := AddWithCarry(ctx.SP(), imm32, false)
		ctx.WriteGPR(d, res)
		ctx.APSR.SetNZCV(res, carry, overflow)
	} else {
		ctx.WriteGPR(d, ctx.SP()+imm32)
	}
	return nil
}

func addSPReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, m, shiftN uint32
	var setFlags bool
	shiftT := ShiftLSL

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data&0x80)>>4 | data&0x7
		m = d
	case T2:
		cond = ctx.IT.Advance()
		d = 13
		m = (data & 0x78) >> 3

		if m == 13 {
			return opErr("ADD (SP plus register)", enc, "m == 13", "encoding T1")
		}
	case T3:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf
		setFlags = data&0x100000 != 0
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if d == 13 && (shiftT != ShiftLSL || shiftN > 3) {
			return opErr("ADD (SP plus register)", enc, "d == 13 && (shift_t != LSL || shift_n > 3)", "UNPREDICTABLE")
		}
		if d == 15 || m == 13 || m == 15 {
			return opErr("ADD (SP plus register)", enc, "d == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("ADD (SP plus register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted := Shift(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	if setFlags {
		res, carry, overflow := AddWithCarry(ctx.SP(), shifted, false)
		ctx.WriteGPR(d, res)
		ctx.APSR.SetNZCV(res, carry, overflow)
	} else {
		ctx.WriteGPR(d, ctx.SP()+shifted)
	}
	return nil
}

func adcImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, n, imm32 uint32
	var setFlags bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		setFlags = data&0x100000 != 0
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if d == 13 || d == 15 || n == 13 || n == 15 {
			return opErr("ADC (immediate)", enc, "d == 13 || d == 15 || n == 13 || n == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("ADC (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), imm32, ctx.APSR.C)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZCV(res, carry, overflow)
	}
	return nil
}

func adcReg(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, m, shiftN uint32
	shiftT := ShiftLSL

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
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 {
			return opErr("ADC (register)", enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("ADC (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted := Shift(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), shifted, ctx.APSR.C)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZCV(res, carry, overflow)
	}
	return nil
}

func sbcImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, n, imm32 uint32
	var setFlags bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		setFlags = data&0x100000 != 0
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if d == 13 || d == 15 || n == 13 || n == 15 {
			return opErr("SBC (immediate)", enc, "d == 13 || d == 15 || n == 13 || n == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("SBC (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), ^imm32, ctx.APSR.C)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZCV(res, carry, overflow)
	}
	return nil
}

func sbcReg(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, m, shiftN uint32
	shiftT := ShiftLSL

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
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 {
			return opErr("SBC (register)", enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("SBC (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted := Shift(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), ^shifted, ctx.APSR.C)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZCV(res, carry, overflow)
	}
	return nil
}

func subImm(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, imm32 uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		n = (data & 0x38) >> 3
		imm32 = (data & 0x1c0) >> 6
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0x700) >> 8
		n = d
		imm32 = data & 0xff
	case T3:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		setFlags = data&0x100000 != 0
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if d == 15 && setFlags {
			return opErr("SUB (immediate)", enc, "d == 15 && set_flags", "CMP (immediate)")
		}
		if n == 13 {
			return opErr("SUB (immediate)", enc, "n == 13", "SUB (SP minus immediate)")
		}
		if d == 13 || d == 15 || n == 15 {
			return opErr("SUB (immediate)", enc, "d == 13 || d == 15 || n == 15", "UNPREDICTABLE")
		}
	case T4:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		setFlags = false
		imm32 = thumb32Imm12(data)

		if n == 15 {
			return opErr("SUB (immediate)", enc, "n == 15", "ADR")
		}
		if n == 13 {
			return opErr("SUB (immediate)", enc, "n == 13", "SUB (SP minus immediate)")
		}
		if d == 13 || d == 15 {
			return opErr("SUB (immediate)", enc, "d == 13 || d == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("SUB (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	if setFlags {
		res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), ^imm32, true)
		ctx.WriteGPR(d, res)
		ctx.APSR.SetNZCV(res, carry, overflow)
	} else {
		ctx.WriteGPR(d, ctx.ReadGPR(n)-imm32)
	}
	return nil
}

func subReg(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, m, shiftN uint32
	shiftT := ShiftLSL

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		n = (data & 0x38) >> 3
		m = (data & 0x1c0) >> 6
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		setFlags = data&0x100000 != 0
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if d == 15 && setFlags {
			return opErr("SUB (register)", enc, "d == 15 && set_flags", "CMP (register)")
		}
		if n == 13 {
			return opErr("SUB (register)", enc, "n == 13", "SUB (SP minus register)")
		}
		if d == 13 || d == 15 || n == 15 || m == 13 || m == 15 {
			return opErr("SUB (register)", enc, "d == 13 || d == 15 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("SUB (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted := Shift(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	if setFlags {
		res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), ^shifted, true)
		ctx.WriteGPR(d, res)
		ctx.APSR.SetNZCV(res, carry, overflow)
	} else {
		ctx.WriteGPR(d, ctx.ReadGPR(n)-shifted)
	}
	return nil
}

func subSPImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, imm32 uint32
	var setFlags bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = 13
		imm32 = (data & 0x7f) << 2
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		setFlags = data&0x100000 != 0
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if d == 15 && setFlags {
			return opErr("SUB (SP minus immediate)", enc, "d == 15 && set_flags", "CMP (immediate)")
		}
		if d == 15 {
			return opErr("SUB (SP minus immediate)", enc, "d == 15", "UNPREDICTABLE")
		}
	case T3:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		imm32 = thumb32Imm12(data)

		if d == 15 {
			return opErr("SUB (SP minus immediate)", enc, "d == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("SUB (SP minus immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	if setFlags {
		res, carry, overflow := AddWithCarry(ctx.SP(), ^imm32, true)
		ctx.WriteGPR(d, res)
		ctx.APSR.SetNZCV(res, carry, overflow)
	} else {
		ctx.WriteGPR(d, ctx.SP()-imm32)
	}
	return nil
}

func rsbImm(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, imm32 uint32

	switch enc {
	case T1:
		// RSBS Rd, Rn, #0 (NEG)
		cond = ctx.IT.Advance()
		d = data & 0x7
		n = (data & 0x38) >> 3
		imm32 = 0
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		setFlags = data&0x100000 != 0
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if d == 13 || d == 15 || n == 13 || n == 15 {
			return opErr("RSB (immediate)", enc, "d == 13 || d == 15 || n == 13 || n == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("RSB (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry, overflow := AddWithCarry(^ctx.ReadGPR(n), imm32, true)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZCV(res, carry, overflow)
	}
	return nil
}

func rsbReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, n, m, shiftN uint32
	var setFlags bool
	var shiftT ShiftType

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		setFlags = data&0x100000 != 0
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 {
			return opErr("RSB (register)", enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("RSB (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted := Shift(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res, carry, overflow := AddWithCarry(^ctx.ReadGPR(n), shifted, true)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZCV(res, carry, overflow)
	}
	return nil
}

// logicalImm is the shared decode of the 32-bit modified-immediate
// forms of AND/ORR/EOR/BIC, which differ only in the operator and in
// which alias their Rd/Rn == 15 slots decode to.
func logicalImm(ctx *Context, code Code, enc Encoding, mnemonic, dAlias, nAlias string) (cond, d, n, imm32 uint32, setFlags, carry bool, err error) {
	data := uint32(code)

	cond = ctx.IT.Advance()
	d = (data & 0xf00) >> 8
	n = (data & 0xf0000) >> 16
	setFlags = data&0x100000 != 0
	imm32, carry = ThumbExpandImmC(thumb32Imm12(data), ctx.APSR.C)

	if dAlias != "" && d == 15 && setFlags {
		err = opErr(mnemonic, enc, "d == 15 && set_flags", dAlias)
		return
	}
	if nAlias != "" && n == 15 {
		err = opErr(mnemonic, enc, "n == 15", nAlias)
		return
	}
	if d == 13 || d == 15 || n == 13 || n == 15 {
		err = opErr(mnemonic, enc, "d == 13 || d == 15 || n == 13 || n == 15", "UNPREDICTABLE")
	}
	return
}

func andImm(ctx *Context, code Code, enc Encoding) error {
	if enc != T1 {
		return notImplErr("AND (immediate)", enc)
	}
	cond, d, n, imm32, setFlags, carry, err := logicalImm(ctx, code, enc, "AND (immediate)", "TST (immediate)", "")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res := ctx.ReadGPR(n) & imm32
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func orrImm(ctx *Context, code Code, enc Encoding) error {
	if enc != T1 {
		return notImplErr("ORR (immediate)", enc)
	}
	cond, d, n, imm32, setFlags, carry, err := logicalImm(ctx, code, enc, "ORR (immediate)", "", "MOV (immediate)")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res := ctx.ReadGPR(n) | imm32
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func eorImm(ctx *Context, code Code, enc Encoding) error {
	if enc != T1 {
		return notImplErr("EOR (immediate)", enc)
	}
	cond, d, n, imm32, setFlags, carry, err := logicalImm(ctx, code, enc, "EOR (immediate)", "TEQ (immediate)", "")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res := ctx.ReadGPR(n) ^ imm32
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func bicImm(ctx *Context, code Code, enc Encoding) error {
	if enc != T1 {
		return notImplErr("BIC (immediate)", enc)
	}
	cond, d, n, imm32, setFlags, carry, err := logicalImm(ctx, code, enc, "BIC (immediate)", "", "")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res := ctx.ReadGPR(n) &^ imm32
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

// logicalReg is the shared decode of the register forms of
// AND/ORR/EOR/BIC: T1 is the 16-bit two-register form, T2 the 32-bit
// shifted-register form.
func logicalReg(ctx *Context, code Code, enc Encoding, mnemonic, dAlias string) (cond, d, n, m, shiftN uint32, shiftT ShiftType, setFlags bool, err error) {
	data := uint32(code)
	setFlags = !ctx.IT.Active()
	shiftT = ShiftLSL

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
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if dAlias != "" && d == 15 && setFlags {
			err = opErr(mnemonic, enc, "d == 15 && set_flags", dAlias)
			return
		}
		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 {
			err = opErr(mnemonic, enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		err = notImplErr(mnemonic, enc)
	}
	return
}

func andReg(ctx *Context, code Code, enc Encoding) error {
	cond, d, n, m, shiftN, shiftT, setFlags, err := logicalReg(ctx, code, enc, "AND (register)", "TST (register)")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted, carry := ShiftC(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res := ctx.ReadGPR(n) & shifted
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func orrReg(ctx *Context, code Code, enc Encoding) error {
	cond, d, n, m, shiftN, shiftT, setFlags, err := logicalReg(ctx, code, enc, "ORR (register)", "")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted, carry := ShiftC(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res := ctx.ReadGPR(n) | shifted
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func eorReg(ctx *Context, code Code, enc Encoding) error {
	cond, d, n, m, shiftN, shiftT, setFlags, err := logicalReg(ctx, code, enc, "EOR (register)", "TEQ (register)")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted, carry := ShiftC(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res := ctx.ReadGPR(n) ^ shifted
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func bicReg(ctx *Context, code Code, enc Encoding) error {
	cond, d, n, m, shiftN, shiftT, setFlags, err := logicalReg(ctx, code, enc, "BIC (register)", "")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted, carry := ShiftC(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res := ctx.ReadGPR(n) &^ shifted
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func mvnImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, imm32 uint32
	var setFlags, carry bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		setFlags = data&0x100000 != 0
		imm32, carry = ThumbExpandImmC(thumb32Imm12(data), ctx.APSR.C)

		if d == 13 || d == 15 {
			return opErr("MVN (immediate)", enc, "d == 13 || d == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MVN (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res := ^imm32
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func mvnReg(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, m, shiftN uint32
	shiftT := ShiftLSL

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		m = (data & 0x38) >> 3
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf
		setFlags = data&0x100000 != 0
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if d == 13 || d == 15 || m == 13 || m == 15 {
			return opErr("MVN (register)", enc, "d == 13 || d == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MVN (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted, carry := ShiftC(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res := ^shifted
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZC(res, carry)
	}
	return nil
}

func movImm(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	carry := ctx.APSR.C
	data := uint32(code)
	var cond, d, imm32 uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data >> 8) & 0x7
		imm32 = data & 0xff
	case T2:
		cond = ctx.IT.Advance()
		setFlags = data&0x100000 != 0
		d = (data >> 8) & 0xf
		imm32, carry = ThumbExpandImmC(thumb32Imm12(data), carry)

		if d == 13 || d == 15 {
			return opErr("MOV (immediate)", enc, "d == 13 || d == 15", "UNPREDICTABLE")
		}
	case T3:
		// MOVW: imm4:i:imm3:imm8
		cond = ctx.IT.Advance()
		setFlags = false
		d = (data >> 8) & 0xf
		imm32 = (data&0xf0000)>>4 | thumb32Imm12(data)

		if d == 13 || d == 15 {
			return opErr("MOV (immediate)", enc, "d == 13 || d == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MOV (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	ctx.WriteGPR(d, imm32)
	if setFlags {
		ctx.APSR.SetNZC(imm32, carry)
	}
	return nil
}

func movReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, m uint32
	var setFlags bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data&0x80)>>4 | data&0x7
		m = (data & 0x78) >> 3
		setFlags = false

		if d == 15 && ctx.IT.Active() {
			return opErr("MOV (register)", enc, "d == 15 && ITSTATE", "UNPREDICTABLE")
		}
	case T2:
		cond = condNever
		d = data & 0x7
		m = (data & 0x38) >> 3
		setFlags = true

		if ctx.IT.Active() {
			return opErr("MOV (register)", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case T3:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf
		setFlags = data&0x100000 != 0

		if (d == 13 || m == 13 || m == 15) && setFlags {
			return opErr("MOV (register)", enc, "(d == 13 || m == 13 || m == 15) && set_flags", "UNPREDICTABLE")
		}
		if d == 13 && (m == 13 || m == 15) || d == 15 {
			return opErr("MOV (register)", enc, "(d == 13 && (m == 13 || m == 15)) || d == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MOV (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res := ctx.ReadGPR(m)
	ctx.WriteGPR(d, res)
	if setFlags {
		ctx.APSR.SetNZ(res)
	}
	return nil
}

func movt(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, imm16 uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		imm16 = (data&0xf0000)>>4 | (data&0x4000000)>>15 | (data&0x7000)>>4 | data&0xff

		if d == 13 || d == 15 {
			return opErr("MOVT", enc, "d == 13 || d == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MOVT", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	ctx.WriteGPR(d, ctx.ReadGPR(d)&0xffff|imm16<<16)
	return nil
}

func cmpImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, imm32 uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0x700) >> 8
		imm32 = data & 0xff
	case T2:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if n == 15 {
			return opErr("CMP (immediate)", enc, "n == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("CMP (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), ^imm32, true)
	ctx.APSR.SetNZCV(res, carry, overflow)
	return nil
}

func cmpReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, m, shiftN uint32
	shiftT := ShiftLSL

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = data & 0x7
		m = (data & 0x38) >> 3
	case T2:
		cond = ctx.IT.Advance()
		n = (data&0x80)>>4 | data&0x7
		m = (data & 0x78) >> 3

		if n < 8 && m < 8 {
			return opErr("CMP (register)", enc, "n < 8 && m < 8", "UNPREDICTABLE")
		}
		if n == 15 || m == 15 {
			return opErr("CMP (register)", enc, "n == 15 || m == 15", "UNPREDICTABLE")
		}
	case T3:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if n == 15 || m == 13 || m == 15 {
			return opErr("CMP (register)", enc, "n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("CMP (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted := Shift(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), ^shifted, true)
	ctx.APSR.SetNZCV(res, carry, overflow)
	return nil
}

func cmnImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, imm32 uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		imm32 = thumbExpandImm(ctx, thumb32Imm12(data))

		if n == 13 || n == 15 {
			return opErr("CMN (immediate)", enc, "n == 13 || n == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("CMN (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), imm32, false)
	ctx.APSR.SetNZCV(res, carry, overflow)
	return nil
}

func cmnReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, m, shiftN uint32
	shiftT := ShiftLSL

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = data & 0x7
		m = (data & 0x38) >> 3
	case T2:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if n == 15 || m == 13 || m == 15 {
			return opErr("CMN (register)", enc, "n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("CMN (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted := Shift(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res, carry, overflow := AddWithCarry(ctx.ReadGPR(n), shifted, false)
	ctx.APSR.SetNZCV(res, carry, overflow)
	return nil
}

func tstImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, imm32 uint32
	var carry bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		imm32, carry = ThumbExpandImmC(thumb32Imm12(data), ctx.APSR.C)

		if n == 13 || n == 15 {
			return opErr("TST (immediate)", enc, "n == 13 || n == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("TST (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res := ctx.ReadGPR(n) & imm32
	ctx.APSR.SetNZC(res, carry)
	return nil
}

func tstReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, m, shiftN uint32
	shiftT := ShiftLSL

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = data & 0x7
		m = (data & 0x38) >> 3
	case T2:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if n == 13 || n == 15 || m == 13 || m == 15 {
			return opErr("TST (register)", enc, "n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("TST (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted, carry := ShiftC(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res := ctx.ReadGPR(n) & shifted
	ctx.APSR.SetNZC(res, carry)
	return nil
}

func teqImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, imm32 uint32
	var carry bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		imm32, carry = ThumbExpandImmC(thumb32Imm12(data), ctx.APSR.C)

		if n == 13 || n == 15 {
			return opErr("TEQ (immediate)", enc, "n == 13 || n == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("TEQ (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	res := ctx.ReadGPR(n) ^ imm32
	ctx.APSR.SetNZC(res, carry)
	return nil
}

func teqReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, m, shiftN uint32
	var shiftT ShiftType

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		shiftT, shiftN = DecodeImmShift((data&0x30)>>4, thumb32ImmShift(data))

		if n == 13 || n == 15 || m == 13 || m == 15 {
			return opErr("TEQ (register)", enc, "n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("TEQ (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	shifted, carry := ShiftC(ctx.ReadGPR(m), shiftT, shiftN, ctx.APSR.C)
	res := ctx.ReadGPR(n) ^ shifted
	ctx.APSR.SetNZC(res, carry)
	return nil
}
