package armv7

// Multiply and divide routines. Only MUL has a 16-bit encoding; the
// rest live in the 32-bit Thumb multiply space. Flag updates are
// limited to N and Z (the carry out of a multiply is meaningless).

func mul(ctx *Context, code Code, enc Encoding) error {
	setFlags := !ctx.IT.Active()
	data := uint32(code)
	var cond, d, n, m uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		m = d
		n = (data & 0x38) >> 3
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		setFlags = false

		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 {
			return opErr("MUL", enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MUL", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	result := ctx.ReadGPR(n) * ctx.ReadGPR(m)
	ctx.WriteGPR(d, result)
	if setFlags {
		ctx.APSR.SetNZ(result)
	}
	return nil
}

func mla(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, n, m, ra uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		ra = (data & 0xf000) >> 12

		if ra == 15 {
			return opErr("MLA", enc, "ra == 15", "MUL")
		}
		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 || ra == 13 {
			return opErr("MLA", enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 || ra == 13", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MLA", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	ctx.WriteGPR(d, ctx.ReadGPR(n)*ctx.ReadGPR(m)+ctx.ReadGPR(ra))
	return nil
}

func mls(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, n, m, ra uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		ra = (data & 0xf000) >> 12

		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 || ra == 13 || ra == 15 {
			return opErr("MLS", enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 || ra == 13 || ra == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("MLS", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	ctx.WriteGPR(d, ctx.ReadGPR(ra)-ctx.ReadGPR(n)*ctx.ReadGPR(m))
	return nil
}

// mulLong decodes the shared layout of UMULL and SMULL.
func mulLong(ctx *Context, code Code, enc Encoding, mnemonic string) (cond, dLo, dHi, n, m uint32, err error) {
	data := uint32(code)

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		dLo = (data & 0xf000) >> 12
		dHi = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf

		if dLo == dHi {
			err = opErr(mnemonic, enc, "dLo == dHi", "UNPREDICTABLE")
			return
		}
		if dLo == 13 || dLo == 15 || dHi == 13 || dHi == 15 || n == 13 || n == 15 || m == 13 || m == 15 {
			err = opErr(mnemonic, enc, "dLo == 13 || dLo == 15 || dHi == 13 || dHi == 15 || n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		err = notImplErr(mnemonic, enc)
	}
	return
}

func umull(ctx *Context, code Code, enc Encoding) error {
	cond, dLo, dHi, n, m, err := mulLong(ctx, code, enc, "UMULL")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	result := uint64(ctx.ReadGPR(n)) * uint64(ctx.ReadGPR(m))
	ctx.WriteGPR(dLo, uint32(result))
	ctx.WriteGPR(dHi, uint32(result>>32))
	return nil
}

func smull(ctx *Context, code Code, enc Encoding) error {
	cond, dLo, dHi, n, m, err := mulLong(ctx, code, enc, "SMULL")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	result := int64(int32(ctx.ReadGPR(n))) * int64(int32(ctx.ReadGPR(m)))
	ctx.WriteGPR(dLo, uint32(result))
	ctx.WriteGPR(dHi, uint32(uint64(result)>>32))
	return nil
}

// divide decodes the shared layout of SDIV and UDIV.
func divide(ctx *Context, code Code, enc Encoding, mnemonic string) (cond, d, n, m uint32, err error) {
	data := uint32(code)

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		n = (data & 0xf0000) >> 16
		m = data & 0xf

		if d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15 {
			err = opErr(mnemonic, enc, "d == 13 || d == 15 || n == 13 || n == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		err = notImplErr(mnemonic, enc)
	}
	return
}

func sdiv(ctx *Context, code Code, enc Encoding) error {
	cond, d, n, m, err := divide(ctx, code, enc, "SDIV")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	divisor := int32(ctx.ReadGPR(m))
	if divisor == 0 {
		// Division by zero yields zero on cores without the trap.
		ctx.WriteGPR(d, 0)
		return nil
	}
	dividend := int32(ctx.ReadGPR(n))
	if dividend == -0x80000000 && divisor == -1 {
		ctx.WriteGPR(d, 0x80000000)
		return nil
	}
	ctx.WriteGPR(d, uint32(dividend/divisor))
	return nil
}

func udiv(ctx *Context, code Code, enc Encoding) error {
	cond, d, n, m, err := divide(ctx, code, enc, "UDIV")
	if err != nil {
		return err
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	divisor := ctx.ReadGPR(m)
	if divisor == 0 {
		ctx.WriteGPR(d, 0)
		return nil
	}
	ctx.WriteGPR(d, ctx.ReadGPR(n)/divisor)
	return nil
}
