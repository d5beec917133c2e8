package armv7

import "testing"

// ldrexStrex runs LDREX R0, [R1] followed by STREX R2, R3, [R1] with an
// optional interference step between the two.
func ldrexStrex(t *testing.T, initial, storeValue uint32, interfere func(m *Memory, addr uint32)) (status, final uint32) {
	t.Helper()
	th := newTestThread(t)
	addr := uint32(DataSegmentStart)
	th.Ctx.GPR[1] = addr
	th.Ctx.GPR[3] = storeValue
	if err := th.Ctx.Mem.Write32(addr, initial); err != nil {
		t.Fatal(err)
	}

	loadThumb(t, th,
		0xE851, 0x0F00, // LDREX R0, [R1]
		0xE841, 0x3200, // STREX R2, R3, [R1]
	)

	steps(t, th, 1)
	if th.Ctx.GPR[0] != initial {
		t.Fatalf("LDREX loaded 0x%08X, want 0x%08X", th.Ctx.GPR[0], initial)
	}
	if th.Ctx.RAddr != addr || th.Ctx.RData != initial {
		t.Fatalf("monitor = (0x%08X, 0x%08X), want (0x%08X, 0x%08X)",
			th.Ctx.RAddr, th.Ctx.RData, addr, initial)
	}

	if interfere != nil {
		interfere(th.Ctx.Mem, addr)
	}

	steps(t, th, 1)
	final, err := th.Ctx.Mem.Read32(addr)
	if err != nil {
		t.Fatal(err)
	}
	return th.Ctx.GPR[2], final
}

func TestStrexSucceedsUndisturbed(t *testing.T) {
	status, final := ldrexStrex(t, 42, 99, nil)
	if status != 0 {
		t.Errorf("STREX status = %d, want 0 (success)", status)
	}
	if final != 99 {
		t.Errorf("memory = %d, want 99", final)
	}
}

func TestStrexSucceedsOnSameValueStore(t *testing.T) {
	// Another actor stores the same value between LDREX and STREX: the
	// value comparison still matches, so the store succeeds. This is
	// the documented ABA weakness of the per-context monitor.
	status, final := ldrexStrex(t, 42, 99, func(m *Memory, addr uint32) {
		if err := m.Write32(addr, 42); err != nil {
			t.Fatal(err)
		}
	})
	if status != 0 {
		t.Errorf("STREX status = %d, want 0", status)
	}
	if final != 99 {
		t.Errorf("memory = %d, want 99", final)
	}
}

func TestStrexFailsOnChangedValue(t *testing.T) {
	status, final := ldrexStrex(t, 42, 99, func(m *Memory, addr uint32) {
		if err := m.Write32(addr, 43); err != nil {
			t.Fatal(err)
		}
	})
	if status != 1 {
		t.Errorf("STREX status = %d, want 1 (failure)", status)
	}
	if final != 43 {
		t.Errorf("memory = %d, want 43 (store suppressed)", final)
	}
}

func TestStrexWithoutReservationFails(t *testing.T) {
	th := newTestThread(t)
	addr := uint32(DataSegmentStart)
	th.Ctx.GPR[1] = addr
	th.Ctx.GPR[3] = 99
	if err := th.Ctx.Mem.Write32(addr, 42); err != nil {
		t.Fatal(err)
	}

	loadThumb(t, th, 0xE841, 0x3200) // STREX with no prior LDREX
	steps(t, th, 1)

	if th.Ctx.GPR[2] != 1 {
		t.Errorf("STREX status = %d, want 1", th.Ctx.GPR[2])
	}
	if got, _ := th.Ctx.Mem.Read32(addr); got != 42 {
		t.Errorf("memory = %d, want 42 (untouched)", got)
	}
}

func TestStrexMismatchedAddressFails(t *testing.T) {
	th := newTestThread(t)
	addr := uint32(DataSegmentStart)
	other := addr + 0x100
	th.Ctx.GPR[1] = addr
	th.Ctx.GPR[4] = other
	th.Ctx.GPR[3] = 99
	if err := th.Ctx.Mem.Write32(addr, 42); err != nil {
		t.Fatal(err)
	}
	if err := th.Ctx.Mem.Write32(other, 42); err != nil {
		t.Fatal(err)
	}

	loadThumb(t, th,
		0xE851, 0x0F00, // LDREX R0, [R1]
		0xE844, 0x3200, // STREX R2, R3, [R4]
	)
	steps(t, th, 2)

	if th.Ctx.GPR[2] != 1 {
		t.Errorf("STREX status = %d, want 1", th.Ctx.GPR[2])
	}
	if got, _ := th.Ctx.Mem.Read32(other); got != 42 {
		t.Errorf("memory = %d, want 42 (store suppressed)", got)
	}
	if th.Ctx.RAddr != 0 {
		t.Error("reservation not cleared by STREX")
	}
}
