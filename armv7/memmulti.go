package armv7

import "math/bits"

// Block-transfer routines. A 16-bit register mask drives every form:
// the lowest-numbered register always occupies the lowest address.
// PUSH stores downward from SP, POP loads upward; LDM/STM walk upward
// from Rn and LDMDB/STMDB downward.

func push(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, regList uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		regList = (data&0x100)<<6 | data&0xff

		if regList == 0 {
			return opErr("PUSH", enc, "reg_list == 0", "UNPREDICTABLE")
		}
	case T2:
		cond = ctx.IT.Advance()
		regList = data & 0x5fff

		if bits.OnesCount32(regList) < 2 {
			return opErr("PUSH", enc, "BitCount(reg_list) < 2", "UNPREDICTABLE")
		}
	case T3:
		cond = ctx.IT.Advance()
		regList = 1 << ((data & 0xf000) >> 12)

		if regList&0x8000 != 0 || regList&0x2000 != 0 {
			return opErr("PUSH", enc, "(reg_list & 0x8000) || (reg_list & 0x2000)", "UNPREDICTABLE")
		}
	case A1:
		cond = data >> 28
		regList = data & 0xffff

		if bits.OnesCount32(regList) < 2 {
			return opErr("PUSH", enc, "BitCount(reg_list) < 2", "STMDB / STMFD")
		}
	case A2:
		cond = data >> 28
		regList = 1 << ((data & 0xf000) >> 12)

		if regList&0x2000 != 0 {
			return opErr("PUSH", enc, "reg_list & 0x2000", "UNPREDICTABLE")
		}
	default:
		return notImplErr("PUSH", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	var written uint32
	for i := 15; i >= 0; i-- {
		if regList&(1<<i) == 0 {
			continue
		}
		written += 4
		if err := ctx.Mem.Write32(ctx.SP()-written, ctx.ReadGPR(uint32(i))); err != nil {
			return err
		}
	}
	ctx.SetSP(ctx.SP() - written)
	return nil
}

func pop(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, regList uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		regList = (data&0x100)<<7 | data&0xff

		if regList == 0 {
			return opErr("POP", enc, "reg_list == 0", "UNPREDICTABLE")
		}
	case T2:
		cond = ctx.IT.Advance()
		regList = data & 0xdfff

		if bits.OnesCount32(regList) < 2 || regList&0x8000 != 0 && regList&0x4000 != 0 {
			return opErr("POP", enc, "BitCount(reg_list) < 2 || ((reg_list & 0x8000) && (reg_list & 0x4000))", "UNPREDICTABLE")
		}
		if regList&0x8000 != 0 && ctx.IT.Active() {
			return opErr("POP", enc, "(reg_list & 0x8000) && ITSTATE", "UNPREDICTABLE")
		}
	case T3:
		cond = ctx.IT.Advance()
		regList = 1 << ((data & 0xf000) >> 12)

		if regList&0x2000 != 0 || regList&0x8000 != 0 && ctx.IT.Active() {
			return opErr("POP", enc, "(reg_list & 0x2000) || ((reg_list & 0x8000) && ITSTATE)", "UNPREDICTABLE")
		}
	case A1:
		cond = data >> 28
		regList = data & 0xffff

		if bits.OnesCount32(regList) < 2 {
			return opErr("POP", enc, "BitCount(reg_list) < 2", "LDM / LDMIA / LDMFD")
		}
		if regList&0x2000 != 0 {
			return opErr("POP", enc, "reg_list & 0x2000", "UNPREDICTABLE")
		}
	case A2:
		cond = data >> 28
		regList = 1 << ((data & 0xf000) >> 12)

		if regList&0x2000 != 0 {
			return opErr("POP", enc, "reg_list & 0x2000", "UNPREDICTABLE")
		}
	default:
		return notImplErr("POP", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	var read uint32
	for i := 0; i < 16; i++ {
		if regList&(1<<i) == 0 {
			continue
		}
		value, err := ctx.Mem.Read32(ctx.SP() + read)
		if err != nil {
			return err
		}
		ctx.WriteGPR(uint32(i), value)
		read += 4
	}
	ctx.SetSP(ctx.SP() + read)
	return nil
}

func ldm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, regList uint32
	var wback bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0x700) >> 8
		regList = data & 0xff
		// Writeback iff Rn is not also loaded.
		wback = regList&(1<<n) == 0

		if regList == 0 {
			return opErr("LDM", enc, "reg_list == 0", "UNPREDICTABLE")
		}
	case T2:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		regList = data & 0xdfff
		wback = data&0x200000 != 0

		if wback && n == 13 {
			return opErr("LDM", enc, "wback && n == 13", "POP")
		}
		if n == 15 || bits.OnesCount32(regList) < 2 || regList&0x8000 != 0 && regList&0x4000 != 0 {
			return opErr("LDM", enc, "n == 15 || BitCount(reg_list) < 2 || (PC && LR)", "UNPREDICTABLE")
		}
		if regList&0x8000 != 0 && ctx.IT.Active() {
			return opErr("LDM", enc, "(reg_list & 0x8000) && ITSTATE", "UNPREDICTABLE")
		}
		if wback && regList&(1<<n) != 0 {
			return opErr("LDM", enc, "wback && reg_list<n>", "UNPREDICTABLE")
		}
	default:
		return notImplErr("LDM", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr := ctx.ReadGPR(n)
	var read uint32
	for i := 0; i < 16; i++ {
		if regList&(1<<i) == 0 {
			continue
		}
		value, err := ctx.Mem.Read32(addr + read)
		if err != nil {
			return err
		}
		ctx.WriteGPR(uint32(i), value)
		read += 4
	}
	if wback {
		ctx.WriteGPR(n, addr+read)
	}
	return nil
}

func stm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, regList uint32
	var wback bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0x700) >> 8
		regList = data & 0xff
		wback = true

		if regList == 0 {
			return opErr("STM", enc, "reg_list == 0", "UNPREDICTABLE")
		}
	case T2:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		regList = data & 0x5fff
		wback = data&0x200000 != 0

		if n == 15 || bits.OnesCount32(regList) < 2 {
			return opErr("STM", enc, "n == 15 || BitCount(reg_list) < 2", "UNPREDICTABLE")
		}
		if wback && regList&(1<<n) != 0 {
			return opErr("STM", enc, "wback && reg_list<n>", "UNPREDICTABLE")
		}
	default:
		return notImplErr("STM", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr := ctx.ReadGPR(n)
	var written uint32
	for i := 0; i < 16; i++ {
		if regList&(1<<i) == 0 {
			continue
		}
		if err := ctx.Mem.Write32(addr+written, ctx.ReadGPR(uint32(i))); err != nil {
			return err
		}
		written += 4
	}
	if wback {
		ctx.WriteGPR(n, addr+written)
	}
	return nil
}

func ldmdb(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, regList uint32
	var wback bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		regList = data & 0xdfff
		wback = data&0x200000 != 0

		if n == 15 || bits.OnesCount32(regList) < 2 || regList&0x8000 != 0 && regList&0x4000 != 0 {
			return opErr("LDMDB", enc, "n == 15 || BitCount(reg_list) < 2 || (PC && LR)", "UNPREDICTABLE")
		}
		if regList&0x8000 != 0 && ctx.IT.Active() {
			return opErr("LDMDB", enc, "(reg_list & 0x8000) && ITSTATE", "UNPREDICTABLE")
		}
		if wback && regList&(1<<n) != 0 {
			return opErr("LDMDB", enc, "wback && reg_list<n>", "UNPREDICTABLE")
		}
	default:
		return notImplErr("LDMDB", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	base := ctx.ReadGPR(n) - 4*uint32(bits.OnesCount32(regList))
	var read uint32
	for i := 0; i < 16; i++ {
		if regList&(1<<i) == 0 {
			continue
		}
		value, err := ctx.Mem.Read32(base + read)
		if err != nil {
			return err
		}
		ctx.WriteGPR(uint32(i), value)
		read += 4
	}
	if wback {
		ctx.WriteGPR(n, base)
	}
	return nil
}

func stmdb(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, n, regList uint32
	var wback bool

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		n = (data & 0xf0000) >> 16
		regList = data & 0x5fff
		wback = data&0x200000 != 0

		if wback && n == 13 {
			return opErr("STMDB", enc, "wback && n == 13", "PUSH")
		}
		if n == 15 || bits.OnesCount32(regList) < 2 {
			return opErr("STMDB", enc, "n == 15 || BitCount(reg_list) < 2", "UNPREDICTABLE")
		}
		if wback && regList&(1<<n) != 0 {
			return opErr("STMDB", enc, "wback && reg_list<n>", "UNPREDICTABLE")
		}
	default:
		return notImplErr("STMDB", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	base := ctx.ReadGPR(n) - 4*uint32(bits.OnesCount32(regList))
	var written uint32
	for i := 0; i < 16; i++ {
		if regList&(1<<i) == 0 {
			continue
		}
		if err := ctx.Mem.Write32(base+written, ctx.ReadGPR(uint32(i))); err != nil {
			return err
		}
		written += 4
	}
	if wback {
		ctx.WriteGPR(n, base)
	}
	return nil
}
