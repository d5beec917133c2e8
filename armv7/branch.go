package armv7

import "math/bits"

// Branch and control-flow routines. Thumb branch targets are relative
// to the PC read value (instruction address plus 4); interworking forms
// switch the instruction set from bit 0 of the target.

// thumb32BranchImm20 reassembles the S:J2:J1:imm6:imm11 offset of B T3.
func thumb32BranchImm20(data uint32) uint32 {
	s := (data >> 26) & 0x1
	j1 := (data >> 13) & 0x1
	j2 := (data >> 11) & 0x1
	return signExtend(s<<20|j2<<19|j1<<18|(data&0x3f0000)>>4|(data&0x7ff)<<1, 21)
}

// thumb32BranchImm24 reassembles the S:I1:I2:imm10:imm11 offset of
// B T4 / BL T1 / BLX T2, where I1/I2 are J1/J2 xor-folded with S.
func thumb32BranchImm24(data uint32) uint32 {
	s := (data >> 26) & 0x1
	i1 := (data>>13)&0x1 ^ s ^ 1
	i2 := (data>>11)&0x1 ^ s ^ 1
	return signExtend(s<<24|i1<<23|i2<<22|(data&0x3ff0000)>>4|(data&0x7ff)<<1, 25)
}

// interworkingBranch branches to target, switching the instruction set
// per bit 0 (BXWritePC semantics).
func interworkingBranch(ctx *Context, target uint32) {
	if target&1 != 0 {
		ctx.ISet = ISetThumb
		ctx.Thread.SetBranch(target &^ 1)
	} else {
		ctx.ISet = ISetARM
		ctx.Thread.SetBranch(target)
	}
}

func b(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, jump uint32

	switch enc {
	case T1:
		cond = (data >> 8) & 0xf
		jump = 4 + signExtend((data&0xff)<<1, 9)

		if cond == 14 {
			return opErr("B", enc, "cond == 14", "UNDEFINED")
		}
		if cond == 15 {
			return opErr("B", enc, "cond == 15", "SVC")
		}
		if ctx.IT.Active() {
			return opErr("B", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case T2:
		cond = ctx.IT.Advance()
		jump = 4 + signExtend((data&0x7ff)<<1, 12)

		if ctx.IT.Active() {
			return opErr("B", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case T3:
		cond = (data >> 22) & 0xf
		jump = 4 + thumb32BranchImm20(data)

		if cond >= 14 {
			return opErr("B", enc, "cond >= 14", "Related encodings")
		}
		if ctx.IT.Active() {
			return opErr("B", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case T4:
		cond = ctx.IT.Advance()
		jump = 4 + thumb32BranchImm24(data)

		if ctx.IT.Active() {
			return opErr("B", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case A1:
		cond = data >> 28
		jump = 4 + signExtend((data&0xffffff)<<2, 26)
	default:
		return notImplErr("B", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	ctx.Thread.SetBranch(ctx.Thread.PC + jump)
	return nil
}

func bl(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, imm32, newLR uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		newLR = (ctx.Thread.PC + 4) | 1
		imm32 = 4 + thumb32BranchImm24(data)

		if ctx.IT.Active() {
			return opErr("BL", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case A1:
		cond = data >> 28
		newLR = ctx.Thread.PC + 4
		imm32 = 4 + signExtend((data&0xffffff)<<2, 26)
	default:
		return notImplErr("BL", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	ctx.SetLR(newLR)
	ctx.Thread.SetBranch(ctx.Thread.PC + imm32)
	return nil
}

func blx(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, target, newLR uint32

	switch enc {
	case T1:
		// Register form; the instruction is 16 bits so the return
		// address is PC + 2.
		cond = ctx.IT.Advance()
		newLR = (ctx.Thread.PC + 2) | 1
		m := (data >> 3) & 0xf
		if m == 15 {
			return opErr("BLX", enc, "m == 15", "UNPREDICTABLE")
		}
		target = ctx.ReadGPR(m)

		if ctx.IT.Active() {
			return opErr("BLX", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case T2:
		// Immediate form always switches to ARM: the target is forced
		// word-aligned and bit 0 clear.
		cond = ctx.IT.Advance()
		newLR = (ctx.Thread.PC + 4) | 1
		target = (ctx.Thread.PC+4)&^3 + thumb32BranchImm24(data)

		if data&1 != 0 {
			return opErr("BLX", enc, "H == 1", "UNDEFINED")
		}
		if ctx.IT.Active() {
			return opErr("BLX", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case A1:
		cond = data >> 28
		newLR = ctx.Thread.PC + 4
		target = ctx.ReadGPR(data & 0xf)
	case A2:
		// Immediate form always switches to Thumb: bit 0 of the target
		// is forced set, with the H bit supplying the halfword offset.
		cond = condNever
		newLR = ctx.Thread.PC + 4
		target = (ctx.Thread.PC+4)|1 + signExtend((data&0xffffff)<<2|(data&0x1000000)>>23, 26)
	default:
		return notImplErr("BLX", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	ctx.SetLR(newLR)
	interworkingBranch(ctx, target)
	return nil
}

func bx(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, target uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		target = ctx.ReadGPR((data >> 3) & 0xf)

		if ctx.IT.Active() {
			return opErr("BX", enc, "ITSTATE", "UNPREDICTABLE")
		}
	case A1:
		cond = data >> 28
		target = ctx.ReadGPR(data & 0xf)
	default:
		return notImplErr("BX", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	interworkingBranch(ctx, target)
	return nil
}

func cbz(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var n, imm32 uint32
	var nonzero bool

	switch enc {
	case T1:
		n = data & 0x7
		imm32 = (data&0xf8)>>2 | (data&0x200)>>3
		nonzero = data&0x800 != 0

		if ctx.IT.Active() {
			return opErr("CBZ/CBNZ", enc, "ITSTATE", "UNPREDICTABLE")
		}
	default:
		return notImplErr("CBZ/CBNZ", enc)
	}

	// Unconditional with respect to the flags: the register value is
	// the predicate.
	if (ctx.ReadGPR(n) == 0) != nonzero {
		ctx.Thread.SetBranch(ctx.Thread.PC + 4 + imm32)
	}
	return nil
}

func tb(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var n, m uint32
	var halfwords bool

	switch enc {
	case T1:
		n = (data & 0xf0000) >> 16
		m = data & 0xf
		halfwords = data&0x10 != 0

		if m == 13 || m == 15 {
			return opErr("TBB/TBH", enc, "m == 13 || m == 15", "UNPREDICTABLE")
		}
		if ctx.IT.Active() {
			return opErr("TBB/TBH", enc, "ITSTATE", "UNPREDICTABLE")
		}
	default:
		return notImplErr("TBB/TBH", enc)
	}

	base := ctx.ReadGPR(n)
	var entry uint32
	if halfwords {
		h, err := ctx.Mem.Read16(base + ctx.ReadGPR(m)<<1)
		if err != nil {
			return err
		}
		entry = uint32(h)
	} else {
		b, err := ctx.Mem.Read8(base + ctx.ReadGPR(m))
		if err != nil {
			return err
		}
		entry = uint32(b)
	}

	ctx.Thread.SetBranch(ctx.Thread.PC + 4 + entry<<1)
	return nil
}

func it(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)

	switch enc {
	case T1:
		mask := data & 0xf
		first := (data & 0xf0) >> 4

		if mask == 0 {
			return opErr("IT", enc, "mask == 0", "Related encodings")
		}
		if first == 15 {
			return opErr("IT", enc, "firstcond == 15", "UNPREDICTABLE")
		}
		if first == 14 && bits.OnesCount32(mask) != 1 {
			return opErr("IT", enc, "firstcond == 14 && BitCount(mask) != 1", "UNPREDICTABLE")
		}
		if ctx.IT.Active() {
			return opErr("IT", enc, "ITSTATE", "UNPREDICTABLE")
		}
	default:
		return notImplErr("IT", enc)
	}

	ctx.IT.Set(uint8(data & 0xff))
	return nil
}

func nop(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond uint32

	switch enc {
	case T1, T2:
		cond = ctx.IT.Advance()
	case A1:
		cond = data >> 28
	default:
		return notImplErr("NOP", enc)
	}

	ConditionPassed(ctx, cond)
	return nil
}
