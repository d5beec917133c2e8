package armv7

// Single-data-transfer routines. Effective addressing is uniform: the
// offset (immediate or shifted register) combines with Rn under three
// modifiers — index (use the offset address for the access), add (the
// offset sign) and wback (write the offset address back into Rn).
// Loads widen to 32 bits per the size suffix; stores narrow.

// memAccess is one decoded load/store: a size/extend selector plus the
// addressing modifiers.
type memAccess struct {
	t, n   uint32
	index  bool
	add    bool
	wback  bool
	offset uint32 // already shifted for register forms
}

// addr returns the access address and the writeback address.
func (a *memAccess) addr(ctx *Context) (uint32, uint32) {
	base := ctx.ReadGPR(a.n)
	offsetAddr := base + a.offset
	if !a.add {
		offsetAddr = base - a.offset
	}
	if a.index {
		return offsetAddr, offsetAddr
	}
	return base, offsetAddr
}

// finish commits the writeback after a successful access.
func (a *memAccess) finish(ctx *Context, offsetAddr uint32) {
	if a.wback {
		ctx.WriteGPR(a.n, offsetAddr)
	}
}

func ldrImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond uint32
	a := memAccess{index: true, add: true}

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		a.t = data & 0x7
		a.n = (data & 0x38) >> 3
		a.offset = (data & 0x7c0) >> 4
	case T2:
		cond = ctx.IT.Advance()
		a.t = (data & 0x700) >> 8
		a.n = 13
		a.offset = (data & 0xff) << 2
	case T3:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		a.offset = data & 0xfff

		if a.n == 15 {
			return opErr("LDR (immediate)", enc, "n == 15", "LDR (literal)")
		}
		if a.t == 15 && ctx.IT.Active() {
			return opErr("LDR (immediate)", enc, "t == 15 && ITSTATE", "UNPREDICTABLE")
		}
	case T4:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		a.offset = data & 0xff
		a.index = data&0x400 != 0
		a.add = data&0x200 != 0
		a.wback = data&0x100 != 0

		if a.n == 15 {
			return opErr("LDR (immediate)", enc, "n == 15", "LDR (literal)")
		}
		if a.index && a.add && !a.wback {
			return opErr("LDR (immediate)", enc, "index && add && !wback", "LDRT")
		}
		if a.n == 13 && !a.index && a.add && a.wback && a.offset == 4 {
			return opErr("LDR (immediate)", enc, "n == 13 && !index && add && wback && imm32 == 4", "POP")
		}
		if !a.index && !a.wback {
			return opErr("LDR (immediate)", enc, "!index && !wback", "UNDEFINED")
		}
		if a.wback && a.n == a.t || a.t == 15 && ctx.IT.Active() {
			return opErr("LDR (immediate)", enc, "(wback && n == t) || (t == 15 && ITSTATE)", "UNPREDICTABLE")
		}
	default:
		return notImplErr("LDR (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr, offsetAddr := a.addr(ctx)
	value, err := ctx.Mem.Read32(addr)
	if err != nil {
		return err
	}
	ctx.WriteGPR(a.t, value)
	a.finish(ctx, offsetAddr)
	return nil
}

func ldrLit(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, t, imm32 uint32
	add := true

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		t = (data & 0x700) >> 8
		imm32 = (data & 0xff) << 2
	case T2:
		cond = ctx.IT.Advance()
		t = (data & 0xf000) >> 12
		imm32 = data & 0xfff
		add = data&0x800000 != 0

		if t == 15 && ctx.IT.Active() {
			return opErr("LDR (literal)", enc, "t == 15 && ITSTATE", "UNPREDICTABLE")
		}
	default:
		return notImplErr("LDR (literal)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	base := ctx.ReadGPR(RegPC) &^ 3
	addr := base + imm32
	if !add {
		addr = base - imm32
	}
	value, err := ctx.Mem.Read32(addr)
	if err != nil {
		return err
	}
	ctx.WriteGPR(t, value)
	return nil
}

func ldrReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond uint32
	a := memAccess{index: true, add: true}

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		a.t = data & 0x7
		a.n = (data & 0x38) >> 3
		a.offset = ctx.ReadGPR((data & 0x1c0) >> 6)
	case T2:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		m := data & 0xf

		if a.n == 15 {
			return opErr("LDR (register)", enc, "n == 15", "LDR (literal)")
		}
		if m == 13 || m == 15 {
			return opErr("LDR (register)", enc, "m == 13 || m == 15", "UNPREDICTABLE")
		}
		if a.t == 15 && ctx.IT.Active() {
			return opErr("LDR (register)", enc, "t == 15 && ITSTATE", "UNPREDICTABLE")
		}
		a.offset = Shift(ctx.ReadGPR(m), ShiftLSL, (data&0x30)>>4, ctx.APSR.C)
	default:
		return notImplErr("LDR (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr, offsetAddr := a.addr(ctx)
	value, err := ctx.Mem.Read32(addr)
	if err != nil {
		return err
	}
	a.finish(ctx, offsetAddr)
	ctx.WriteGPR(a.t, value)
	return nil
}

func strImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond uint32
	a := memAccess{index: true, add: true}

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		a.t = data & 0x7
		a.n = (data & 0x38) >> 3
		a.offset = (data & 0x7c0) >> 4
	case T2:
		cond = ctx.IT.Advance()
		a.t = (data & 0x700) >> 8
		a.n = 13
		a.offset = (data & 0xff) << 2
	case T3:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		a.offset = data & 0xfff

		if a.n == 15 {
			return opErr("STR (immediate)", enc, "n == 15", "UNDEFINED")
		}
		if a.t == 15 {
			return opErr("STR (immediate)", enc, "t == 15", "UNPREDICTABLE")
		}
	case T4:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		a.offset = data & 0xff
		a.index = data&0x400 != 0
		a.add = data&0x200 != 0
		a.wback = data&0x100 != 0

		if a.index && a.add && !a.wback {
			return opErr("STR (immediate)", enc, "index && add && !wback", "STRT")
		}
		if a.n == 13 && a.index && !a.add && a.wback && a.offset == 4 {
			return opErr("STR (immediate)", enc, "n == 13 && index && !add && wback && imm32 == 4", "PUSH")
		}
		if a.n == 15 || !a.index && !a.wback {
			return opErr("STR (immediate)", enc, "n == 15 || (!index && !wback)", "UNDEFINED")
		}
		if a.t == 15 || a.wback && a.n == a.t {
			return opErr("STR (immediate)", enc, "t == 15 || (wback && n == t)", "UNPREDICTABLE")
		}
	default:
		return notImplErr("STR (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr, offsetAddr := a.addr(ctx)
	if err := ctx.Mem.Write32(addr, ctx.ReadGPR(a.t)); err != nil {
		return err
	}
	a.finish(ctx, offsetAddr)
	return nil
}

func strReg(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond uint32
	a := memAccess{index: true, add: true}

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		a.t = data & 0x7
		a.n = (data & 0x38) >> 3
		a.offset = ctx.ReadGPR((data & 0x1c0) >> 6)
	case T2:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		m := data & 0xf

		if a.n == 15 {
			return opErr("STR (register)", enc, "n == 15", "UNDEFINED")
		}
		if a.t == 15 || m == 13 || m == 15 {
			return opErr("STR (register)", enc, "t == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
		a.offset = Shift(ctx.ReadGPR(m), ShiftLSL, (data&0x30)>>4, ctx.APSR.C)
	default:
		return notImplErr("STR (register)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr, offsetAddr := a.addr(ctx)
	if err := ctx.Mem.Write32(addr, ctx.ReadGPR(a.t)); err != nil {
		return err
	}
	a.finish(ctx, offsetAddr)
	return nil
}

// byteHalfExtend selects the access width and extension of the
// narrow-transfer routines.
type byteHalfExtend int

const (
	accByte byteHalfExtend = iota
	accByteSigned
	accHalf
	accHalfSigned
)

// narrowLoad performs a byte/halfword load with the selected extension.
func narrowLoad(ctx *Context, a *memAccess, ext byteHalfExtend) error {
	addr, offsetAddr := a.addr(ctx)
	var value uint32

	switch ext {
	case accByte, accByteSigned:
		b, err := ctx.Mem.Read8(addr)
		if err != nil {
			return err
		}
		value = uint32(b)
		if ext == accByteSigned {
			value = signExtend(value, 8)
		}
	case accHalf, accHalfSigned:
		h, err := ctx.Mem.Read16(addr)
		if err != nil {
			return err
		}
		value = uint32(h)
		if ext == accHalfSigned {
			value = signExtend(value, 16)
		}
	}

	ctx.WriteGPR(a.t, value)
	a.finish(ctx, offsetAddr)
	return nil
}

// narrowStore performs a byte/halfword store.
func narrowStore(ctx *Context, a *memAccess, ext byteHalfExtend) error {
	addr, offsetAddr := a.addr(ctx)
	value := ctx.ReadGPR(a.t)

	var err error
	if ext == accByte {
		err = ctx.Mem.Write8(addr, uint8(value))
	} else {
		err = ctx.Mem.Write16(addr, uint16(value))
	}
	if err != nil {
		return err
	}
	a.finish(ctx, offsetAddr)
	return nil
}

// decodeNarrowImm decodes the immediate-offset byte/half forms shared
// by LDRB/LDRH/STRB/STRH and the signed loads. layout selects the bit
// pattern — T1 the 16-bit form (immediate scaled per size), T2 the
// 32-bit imm12 form, T3 the 32-bit imm8 form with index/add/wback bits
// — while enc is the variant reported in rejections (the signed loads
// have no 16-bit form, so their ARMARM numbering starts at the imm12
// layout).
func decodeNarrowImm(ctx *Context, code Code, enc, layout Encoding, mnemonic string, scale uint32, load bool) (uint32, memAccess, error) {
	data := uint32(code)
	a := memAccess{index: true, add: true}
	var cond uint32

	switch layout {
	case T1:
		cond = ctx.IT.Advance()
		a.t = data & 0x7
		a.n = (data & 0x38) >> 3
		a.offset = (data & 0x7c0) >> 6 << scale
	case T2:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		a.offset = data & 0xfff

		if a.n == 15 {
			if load {
				return 0, a, opErr(mnemonic, enc, "n == 15", "literal form")
			}
			return 0, a, opErr(mnemonic, enc, "n == 15", "UNDEFINED")
		}
		if a.t == 13 || a.t == 15 {
			return 0, a, opErr(mnemonic, enc, "t == 13 || t == 15", "UNPREDICTABLE")
		}
	case T3:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		a.offset = data & 0xff
		a.index = data&0x400 != 0
		a.add = data&0x200 != 0
		a.wback = data&0x100 != 0

		if a.n == 15 {
			if load {
				return 0, a, opErr(mnemonic, enc, "n == 15", "literal form")
			}
			return 0, a, opErr(mnemonic, enc, "n == 15", "UNDEFINED")
		}
		if a.index && a.add && !a.wback {
			return 0, a, opErr(mnemonic, enc, "index && add && !wback", "unprivileged form")
		}
		if !a.index && !a.wback {
			return 0, a, opErr(mnemonic, enc, "!index && !wback", "UNDEFINED")
		}
		if a.t == 13 || a.t == 15 || a.wback && a.n == a.t {
			return 0, a, opErr(mnemonic, enc, "t == 13 || t == 15 || (wback && n == t)", "UNPREDICTABLE")
		}
	default:
		return 0, a, notImplErr(mnemonic, enc)
	}
	return cond, a, nil
}

// decodeNarrowReg decodes the register-offset byte/half forms. T1 is
// the 16-bit form, T2 the 32-bit form with a 2-bit left shift.
func decodeNarrowReg(ctx *Context, code Code, enc Encoding, mnemonic string) (uint32, memAccess, error) {
	data := uint32(code)
	a := memAccess{index: true, add: true}
	var cond uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		a.t = data & 0x7
		a.n = (data & 0x38) >> 3
		a.offset = ctx.ReadGPR((data & 0x1c0) >> 6)
	case T2:
		cond = ctx.IT.Advance()
		a.t = (data & 0xf000) >> 12
		a.n = (data & 0xf0000) >> 16
		m := data & 0xf

		if a.n == 15 {
			return 0, a, opErr(mnemonic, enc, "n == 15", "literal or UNDEFINED form")
		}
		if a.t == 13 || a.t == 15 || m == 13 || m == 15 {
			return 0, a, opErr(mnemonic, enc, "t == 13 || t == 15 || m == 13 || m == 15", "UNPREDICTABLE")
		}
		a.offset = Shift(ctx.ReadGPR(m), ShiftLSL, (data&0x30)>>4, ctx.APSR.C)
	default:
		return 0, a, notImplErr(mnemonic, enc)
	}
	return cond, a, nil
}

func ldrbImm(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowImm(ctx, code, enc, enc, "LDRB (immediate)", 0, true)
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowLoad(ctx, &a, accByte)
}

func ldrbReg(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowReg(ctx, code, enc, "LDRB (register)")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowLoad(ctx, &a, accByte)
}

func strbImm(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowImm(ctx, code, enc, enc, "STRB (immediate)", 0, false)
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowStore(ctx, &a, accByte)
}

func strbReg(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowReg(ctx, code, enc, "STRB (register)")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowStore(ctx, &a, accByte)
}

func ldrhImm(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowImm(ctx, code, enc, enc, "LDRH (immediate)", 1, true)
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowLoad(ctx, &a, accHalf)
}

func ldrhReg(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowReg(ctx, code, enc, "LDRH (register)")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowLoad(ctx, &a, accHalf)
}

func strhImm(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowImm(ctx, code, enc, enc, "STRH (immediate)", 1, false)
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowStore(ctx, &a, accHalf)
}

func strhReg(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowReg(ctx, code, enc, "STRH (register)")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowStore(ctx, &a, accHalf)
}

func ldrsbImm(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowImm(ctx, code, enc, enc+1, "LDRSB (immediate)", 0, true)
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowLoad(ctx, &a, accByteSigned)
}

func ldrsbReg(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowReg(ctx, code, enc, "LDRSB (register)")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowLoad(ctx, &a, accByteSigned)
}

func ldrshImm(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowImm(ctx, code, enc, enc+1, "LDRSH (immediate)", 0, true)
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowLoad(ctx, &a, accHalfSigned)
}

func ldrshReg(ctx *Context, code Code, enc Encoding) error {
	cond, a, err := decodeNarrowReg(ctx, code, enc, "LDRSH (register)")
	if err != nil {
		return err
	}
	if !ConditionPassed(ctx, cond) {
		return nil
	}
	return narrowLoad(ctx, &a, accHalfSigned)
}

func ldrdImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, t, t2 uint32
	a := memAccess{}

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		t = (data & 0xf000) >> 12
		t2 = (data & 0xf00) >> 8
		a.n = (data & 0xf0000) >> 16
		a.offset = (data & 0xff) << 2
		a.index = data&0x1000000 != 0
		a.add = data&0x800000 != 0
		a.wback = data&0x200000 != 0

		if !a.index && !a.wback {
			return opErr("LDRD (immediate)", enc, "!index && !wback", "Related encodings")
		}
		if a.n == 15 {
			return opErr("LDRD (immediate)", enc, "n == 15", "LDRD (literal)")
		}
		if a.wback && (a.n == t || a.n == t2) {
			return opErr("LDRD (immediate)", enc, "wback && (n == t || n == t2)", "UNPREDICTABLE")
		}
		if t == 13 || t == 15 || t2 == 13 || t2 == 15 || t == t2 {
			return opErr("LDRD (immediate)", enc, "t == 13 || t == 15 || t2 == 13 || t2 == 15 || t == t2", "UNPREDICTABLE")
		}
	default:
		return notImplErr("LDRD (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr, offsetAddr := a.addr(ctx)
	value, err := ctx.Mem.Read64(addr)
	if err != nil {
		return err
	}
	ctx.WriteGPR(t, uint32(value))
	ctx.WriteGPR(t2, uint32(value>>32))
	a.finish(ctx, offsetAddr)
	return nil
}

func strdImm(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, t, t2 uint32
	a := memAccess{}

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		t = (data & 0xf000) >> 12
		t2 = (data & 0xf00) >> 8
		a.n = (data & 0xf0000) >> 16
		a.offset = (data & 0xff) << 2
		a.index = data&0x1000000 != 0
		a.add = data&0x800000 != 0
		a.wback = data&0x200000 != 0

		if !a.index && !a.wback {
			return opErr("STRD (immediate)", enc, "!index && !wback", "Related encodings")
		}
		if a.wback && (a.n == t || a.n == t2) {
			return opErr("STRD (immediate)", enc, "wback && (n == t || n == t2)", "UNPREDICTABLE")
		}
		if a.n == 15 || t == 13 || t == 15 || t2 == 13 || t2 == 15 {
			return opErr("STRD (immediate)", enc, "n == 15 || t == 13 || t == 15 || t2 == 13 || t2 == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("STRD (immediate)", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr, offsetAddr := a.addr(ctx)
	value := uint64(ctx.ReadGPR(t)) | uint64(ctx.ReadGPR(t2))<<32
	if err := ctx.Mem.Write64(addr, value); err != nil {
		return err
	}
	a.finish(ctx, offsetAddr)
	return nil
}
