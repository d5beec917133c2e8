package armv7

import "math/bits"

// Extend, byte-reverse and bit-counting routines.

// extendOp is the shared body of the UXTB/UXTH/SXTB/SXTH family: the
// source is rotated right by an optional multiple of 8, then the low
// byte or halfword is zero- or sign-extended.
func extendOp(ctx *Context, code Code, enc Encoding, mnemonic string, width uint, signed bool) error {
	data := uint32(code)
	var cond, d, m, rot uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		m = (data & 0x38) >> 3
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf
		rot = (data & 0x30) >> 1

		if d == 13 || d == 15 || m == 13 || m == 15 {
			return opErr(mnemonic, enc, "d == 13 || d == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr(mnemonic, enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	rotated := ctx.ReadGPR(m)
	if rot != 0 {
		rotated = rotated>>rot | rotated<<(32-rot)
	}
	value := rotated & (1<<width - 1)
	if signed {
		value = signExtend(value, width)
	}
	ctx.WriteGPR(d, value)
	return nil
}

func uxtb(ctx *Context, code Code, enc Encoding) error {
	return extendOp(ctx, code, enc, "UXTB", 8, false)
}

func uxth(ctx *Context, code Code, enc Encoding) error {
	return extendOp(ctx, code, enc, "UXTH", 16, false)
}

func sxtb(ctx *Context, code Code, enc Encoding) error {
	return extendOp(ctx, code, enc, "SXTB", 8, true)
}

func sxth(ctx *Context, code Code, enc Encoding) error {
	return extendOp(ctx, code, enc, "SXTH", 16, true)
}

// reverseOp is the shared decode of REV/REV16/REVSH/RBIT. layout
// selects the bit pattern (T1 16-bit, T2 32-bit); enc is the variant
// reported in rejections (RBIT has only the 32-bit layout, numbered T1).
func reverseOp(ctx *Context, code Code, enc, layout Encoding, mnemonic string) (cond, d, m uint32, err error) {
	data := uint32(code)

	switch layout {
	case T1:
		cond = ctx.IT.Advance()
		d = data & 0x7
		m = (data & 0x38) >> 3
	case T2:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf

		if (data&0xf0000)>>16 != m {
			err = opErr(mnemonic, enc, "n != m", "UNPREDICTABLE")
			return
		}
		if d == 13 || d == 15 || m == 13 || m == 15 {
			err = opErr(mnemonic, enc, "d == 13 || d == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		err = notImplErr(mnemonic, enc)
	}
	return
}

func rev(ctx *Context, code Code, enc Encoding) error {
	cond, d, m, err := reverseOp(ctx, code, enc, enc, "REV")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	ctx.WriteGPR(d, bits.ReverseBytes32(ctx.ReadGPR(m)))
	return nil
}

func rev16(ctx *Context, code Code, enc Encoding) error {
	cond, d, m, err := reverseOp(ctx, code, enc, enc, "REV16")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	v := ctx.ReadGPR(m)
	ctx.WriteGPR(d, uint32(bits.ReverseBytes16(uint16(v>>16)))<<16|uint32(bits.ReverseBytes16(uint16(v))))
	return nil
}

func revsh(ctx *Context, code Code, enc Encoding) error {
	cond, d, m, err := reverseOp(ctx, code, enc, enc, "REVSH")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	v := uint32(bits.ReverseBytes16(uint16(ctx.ReadGPR(m))))
	ctx.WriteGPR(d, signExtend(v, 16))
	return nil
}

func rbit(ctx *Context, code Code, enc Encoding) error {
	if enc != T1 {
		return notImplErr("RBIT", enc)
	}
	cond, d, m, err := reverseOp(ctx, code, enc, T2, "RBIT")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	ctx.WriteGPR(d, bits.Reverse32(ctx.ReadGPR(m)))
	return nil
}

func clz(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, m uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		m = data & 0xf

		if (data&0xf0000)>>16 != m {
			return opErr("CLZ", enc, "n != m", "UNPREDICTABLE")
		}
		if d == 13 || d == 15 || m == 13 || m == 15 {
			return opErr("CLZ", enc, "d == 13 || d == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("CLZ", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	ctx.WriteGPR(d, uint32(bits.LeadingZeros32(ctx.ReadGPR(m))))
	return nil
}
