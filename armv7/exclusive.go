package armv7

// Exclusive-access routines. LDREX records the accessed address and the
// loaded value in the per-context monitor; STREX succeeds only if the
// address matches the reservation and a compare-and-swap of the
// recorded value still holds. A write-then-restore of the same word by
// another thread between the two is not detected; guest spinlocks and
// atomics tolerate that the same way they tolerate a spurious success
// on real hardware's weaker monitors.

func ldrex(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, t, n, imm32 uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		t = (data & 0xf000) >> 12
		n = (data & 0xf0000) >> 16
		imm32 = (data & 0xff) << 2

		if t == 13 || t == 15 || n == 15 {
			return opErr("LDREX", enc, "t == 13 || t == 15 || n == 15", "UNPREDICTABLE")
		}
	default:
		return notImplErr("LDREX", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr := ctx.ReadGPR(n) + imm32
	value, err := ctx.Mem.Read32(addr)
	if err != nil {
		return err
	}

	ctx.RAddr = addr
	ctx.RData = value
	ctx.WriteGPR(t, value)
	return nil
}

func strex(ctx *Context, code Code, enc Encoding) error {
	data := uint32(code)
	var cond, d, t, n, imm32 uint32

	switch enc {
	case T1:
		cond = ctx.IT.Advance()
		d = (data & 0xf00) >> 8
		t = (data & 0xf000) >> 12
		n = (data & 0xf0000) >> 16
		imm32 = (data & 0xff) << 2

		if d == 13 || d == 15 || t == 13 || t == 15 || n == 15 {
			return opErr("STREX", enc, "d == 13 || d == 15 || t == 13 || t == 15 || n == 15", "UNPREDICTABLE")
		}
		if d == n || d == t {
			return opErr("STREX", enc, "d == n || d == t", "UNPREDICTABLE")
		}
	default:
		return notImplErr("STREX", enc)
	}

	if !ConditionPassed(ctx, cond) {
		return nil
	}

	addr := ctx.ReadGPR(n) + imm32
	value := ctx.ReadGPR(t)

	// Fail without touching memory when there is no reservation or the
	// address does not match it.
	status := uint32(1)
	if ctx.RAddr != 0 && addr == ctx.RAddr {
		prior, err := ctx.Mem.CompareAndSwap32(addr, ctx.RData, value)
		if err != nil {
			return err
		}
		if prior == ctx.RData {
			status = 0
		}
	}
	ctx.WriteGPR(d, status)
	ctx.ClearExclusive()
	return nil
}
