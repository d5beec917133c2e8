package armv7

import (
	"testing"
)

// newTestThread builds a Thumb thread with the default memory map and
// host-call table, entered at the start of the code segment.
func newTestThread(t *testing.T) *Thread {
	t.Helper()
	mem := NewMemory()
	calls := NewHostCallTable()
	RegisterDefaultServices(calls)
	th := NewThread("test", mem, calls, CodeSegmentStart|1)
	th.Ctx.SetSP(StackSegmentStart + StackSegmentSize)
	return th
}

// loadThumb writes halfwords at the thread's PC.
func loadThumb(t *testing.T, th *Thread, halfwords ...uint16) {
	t.Helper()
	addr := th.PC
	for _, hw := range halfwords {
		if err := th.Ctx.Mem.Write16(addr, hw); err != nil {
			t.Fatalf("failed to place instruction at 0x%08X: %v", addr, err)
		}
		addr += 2
	}
}

// steps executes n instructions, failing the test on any error.
func steps(t *testing.T, th *Thread, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := th.Step(); err != nil {
			t.Fatalf("step %d failed at PC=0x%08X: %v", i, th.PC, err)
		}
	}
}

func TestAddCarryOutScenario(t *testing.T) {
	// ADDS R2, R0, R1 (T3) with R0 = 0xFFFFFFFF, R1 = 1: result wraps
	// to zero with carry out and no overflow.
	th := newTestThread(t)
	th.Ctx.GPR[0] = 0xFFFFFFFF
	th.Ctx.GPR[1] = 1
	loadThumb(t, th, 0xEB10, 0x0201)

	steps(t, th, 1)

	if th.Ctx.GPR[2] != 0 {
		t.Errorf("R2 = 0x%08X, want 0", th.Ctx.GPR[2])
	}
	if a := th.Ctx.APSR; a.N || !a.Z || !a.C || a.V {
		t.Errorf("flags = %+v, want N=0 Z=1 C=1 V=0", a)
	}
}

func TestAddOverflowScenario(t *testing.T) {
	// ADDS R2, R0, R1 (T3) with R0 = 0x7FFFFFFF, R1 = 1: signed
	// overflow into the negative range.
	th := newTestThread(t)
	th.Ctx.GPR[0] = 0x7FFFFFFF
	th.Ctx.GPR[1] = 1
	loadThumb(t, th, 0xEB10, 0x0201)

	steps(t, th, 1)

	if th.Ctx.GPR[2] != 0x80000000 {
		t.Errorf("R2 = 0x%08X, want 0x80000000", th.Ctx.GPR[2])
	}
	if a := th.Ctx.APSR; !a.N || a.Z || a.C || !a.V {
		t.Errorf("flags = %+v, want N=1 Z=0 C=0 V=1", a)
	}
}

func TestMovCmpScenario(t *testing.T) {
	// MOV R0, #5 then CMP R0, #5: equality sets Z and C.
	th := newTestThread(t)
	loadThumb(t, th, 0x2005, 0x2805)

	steps(t, th, 2)

	if th.Ctx.GPR[0] != 5 {
		t.Errorf("R0 = %d, want 5", th.Ctx.GPR[0])
	}
	if a := th.Ctx.APSR; a.N || !a.Z || !a.C || a.V {
		t.Errorf("flags = %+v, want N=0 Z=1 C=1 V=0", a)
	}
}

func TestMovwMovtConstant(t *testing.T) {
	// The standard 32-bit constant idiom: MOVW writes the low half,
	// MOVT replaces the high half. Both vectors have the i bit set so
	// the i:imm3:imm8 reassembly is exercised, not just imm4:imm8.
	th := newTestThread(t)
	loadThumb(t, th,
		0xF64C, 0x3CDE, // MOVW R12, #0xCBDE
		0xF6C1, 0x2C37, // MOVT R12, #0x1A37
	)

	steps(t, th, 1)
	if th.Ctx.GPR[12] != 0x0000CBDE {
		t.Fatalf("R12 after MOVW = 0x%08X, want 0x0000CBDE", th.Ctx.GPR[12])
	}

	steps(t, th, 1)
	if th.Ctx.GPR[12] != 0x1A37CBDE {
		t.Errorf("R12 after MOVT = 0x%08X, want 0x1A37CBDE", th.Ctx.GPR[12])
	}
}

func TestPushPopScenario(t *testing.T) {
	// PUSH {R0-R3} from SP = 0x1000 lays the registers out
	// lowest-first, then POP {R4-R7} restores them and SP.
	th := newTestThread(t)
	th.Ctx.Mem.AddSegment("low", 0, 0x2000, PermRead|PermWrite)
	th.Ctx.SetSP(0x1000)
	th.Ctx.GPR[0] = 0xA
	th.Ctx.GPR[1] = 0xB
	th.Ctx.GPR[2] = 0xC
	th.Ctx.GPR[3] = 0xD
	loadThumb(t, th, 0xB40F, 0xBCF0)

	steps(t, th, 1)

	if sp := th.Ctx.SP(); sp != 0x0FF0 {
		t.Fatalf("SP after PUSH = 0x%08X, want 0x0FF0", sp)
	}
	for i, want := range []uint32{0xA, 0xB, 0xC, 0xD} {
		got, err := th.Ctx.Mem.Read32(0x0FF0 + uint32(i)*4)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("memory[0x%04X] = 0x%X, want 0x%X", 0x0FF0+i*4, got, want)
		}
	}

	steps(t, th, 1)

	if sp := th.Ctx.SP(); sp != 0x1000 {
		t.Errorf("SP after POP = 0x%08X, want 0x1000", sp)
	}
	for i, want := range []uint32{0xA, 0xB, 0xC, 0xD} {
		if got := th.Ctx.GPR[4+i]; got != want {
			t.Errorf("R%d = 0x%X, want 0x%X", 4+i, got, want)
		}
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	// PUSH then POP of the same mask restores every register and SP.
	masks := []uint16{0x000F, 0x00FF, 0x0005, 0x4090}
	for _, mask := range masks {
		th := newTestThread(t)
		for i := 0; i < 15; i++ {
			th.Ctx.GPR[i] = uint32(0x1000 + i)
		}
		th.Ctx.SetSP(StackSegmentStart + StackSegmentSize)
		spBefore := th.Ctx.SP()

		var before [15]uint32
		copy(before[:], th.Ctx.GPR[:])

		// PUSH via T2 (any mask), clobber, then POP via T2.
		loadThumb(t, th, 0xE92D, mask, 0xE8BD, mask)
		steps(t, th, 1)

		for i := 0; i < 13; i++ {
			if mask&(1<<i) != 0 {
				th.Ctx.GPR[i] = 0xDEAD0000
			}
		}

		steps(t, th, 1)

		if th.Ctx.SP() != spBefore {
			t.Errorf("mask %04X: SP = 0x%08X, want 0x%08X", mask, th.Ctx.SP(), spBefore)
		}
		for i := 0; i < 15; i++ {
			if i == RegSP {
				continue
			}
			if mask&(1<<i) != 0 && th.Ctx.GPR[i] != before[i] {
				t.Errorf("mask %04X: R%d = 0x%08X, want 0x%08X", mask, i, th.Ctx.GPR[i], before[i])
			}
		}
	}
}

func TestITBlockGating(t *testing.T) {
	t.Run("flags gated inside IT block", func(t *testing.T) {
		// MOVS R0, #0 sets Z; IT NE skips ADD R1, #1; the add must
		// neither run nor touch the flags.
		th := newTestThread(t)
		loadThumb(t, th,
			0x2000, // MOVS R0, #0
			0xBF18, // IT NE
			0x3101, // ADD R1, #1 (inside block: no flags)
		)
		steps(t, th, 3)

		if th.Ctx.GPR[1] != 0 {
			t.Errorf("R1 = %d, want 0 (ADD predicated off)", th.Ctx.GPR[1])
		}
		if !th.Ctx.APSR.Z {
			t.Error("Z flag clobbered by predicated-off instruction")
		}
	})

	t.Run("16-bit add sets flags outside IT block", func(t *testing.T) {
		th := newTestThread(t)
		th.Ctx.GPR[0] = 0xFFFFFFFF
		loadThumb(t, th, 0x3001) // ADDS R0, #1
		steps(t, th, 1)

		if !th.Ctx.APSR.Z || !th.Ctx.APSR.C {
			t.Errorf("flags = %+v, want Z=1 C=1", th.Ctx.APSR)
		}
	})

	t.Run("16-bit add keeps flags inside IT block", func(t *testing.T) {
		th := newTestThread(t)
		th.Ctx.APSR.Z = true
		th.Ctx.GPR[0] = 0xFFFFFFFF
		loadThumb(t, th,
			0xBF08, // IT EQ
			0x3001, // ADD R0, #1 (executes: Z set; must not set flags)
		)
		steps(t, th, 2)

		if th.Ctx.GPR[0] != 0 {
			t.Errorf("R0 = 0x%08X, want 0 (add executed)", th.Ctx.GPR[0])
		}
		if th.Ctx.APSR.C {
			t.Error("carry set by implicitly non-flag-setting add inside IT block")
		}
	})
}

func TestITBlockEndToEnd(t *testing.T) {
	// ITT EQ predicates two adds on Z; after the block the state is
	// clear either way.
	run := func(zIn bool) (r1, r2 uint32, itClear bool) {
		th := newTestThread(t)
		th.Ctx.APSR.Z = zIn
		loadThumb(t, th,
			0xBF04, // ITT EQ
			0x3101, // ADD R1, #1
			0x3201, // ADD R2, #1
		)
		steps(t, th, 3)
		return th.Ctx.GPR[1], th.Ctx.GPR[2], !th.Ctx.IT.Active()
	}

	r1, r2, clear := run(true)
	if r1 != 1 || r2 != 1 {
		t.Errorf("Z=1: R1, R2 = %d, %d, want 1, 1", r1, r2)
	}
	if !clear {
		t.Error("Z=1: ITSTATE not cleared after block")
	}

	r1, r2, clear = run(false)
	if r1 != 0 || r2 != 0 {
		t.Errorf("Z=0: R1, R2 = %d, %d, want 0, 0", r1, r2)
	}
	if !clear {
		t.Error("Z=0: ITSTATE not cleared after block")
	}
}

func TestBranches(t *testing.T) {
	t.Run("unconditional branch", func(t *testing.T) {
		// B .+8: jump = 4 + imm11<<1.
		th := newTestThread(t)
		start := th.PC
		loadThumb(t, th, 0xE002) // B over two halfwords
		steps(t, th, 1)

		if th.PC != start+8 {
			t.Errorf("PC = 0x%08X, want 0x%08X", th.PC, start+8)
		}
	})

	t.Run("conditional branch not taken", func(t *testing.T) {
		th := newTestThread(t)
		start := th.PC
		loadThumb(t, th, 0xD001) // BEQ .+6 with Z clear
		steps(t, th, 1)

		if th.PC != start+2 {
			t.Errorf("PC = 0x%08X, want fall-through 0x%08X", th.PC, start+2)
		}
	})

	t.Run("BL links and branches", func(t *testing.T) {
		// BL .+4: S=0 imm10=0 imm11=0 with J1=J2=1 (so I1=I2=0).
		th := newTestThread(t)
		start := th.PC
		loadThumb(t, th, 0xF000, 0xF800)
		steps(t, th, 1)

		if th.PC != start+4 {
			t.Errorf("PC = 0x%08X, want 0x%08X", th.PC, start+4)
		}
		if lr := th.Ctx.LR(); lr != (start+4)|1 {
			t.Errorf("LR = 0x%08X, want 0x%08X", lr, (start+4)|1)
		}
	})

	t.Run("BL with large displacement", func(t *testing.T) {
		// BL .+0x500004: the offset makes I1 != I2, so the J-bit
		// unfolding order is load-bearing.
		th := newTestThread(t)
		start := th.PC
		loadThumb(t, th, 0xF100, 0xF000)
		steps(t, th, 1)

		if want := start + 4 + 0x500000; th.PC != want {
			t.Errorf("PC = 0x%08X, want 0x%08X", th.PC, want)
		}
		if lr := th.Ctx.LR(); lr != (start+4)|1 {
			t.Errorf("LR = 0x%08X, want 0x%08X", lr, (start+4)|1)
		}
	})

	t.Run("BX to ARM and back to Thumb", func(t *testing.T) {
		th := newTestThread(t)
		target := th.PC + 0x100
		th.Ctx.GPR[2] = target // bit 0 clear: ARM
		loadThumb(t, th, 0x4710) // BX R2
		steps(t, th, 1)

		if th.Ctx.ISet != ISetARM {
			t.Errorf("ISet = %v, want ARM", th.Ctx.ISet)
		}
		if th.PC != target {
			t.Errorf("PC = 0x%08X, want 0x%08X", th.PC, target)
		}

		// BX LR with bit 0 set switches back.
		if err := th.Ctx.Mem.Write32(th.PC, 0xE12FFF1E); err != nil {
			t.Fatal(err)
		}
		th.Ctx.SetLR((CodeSegmentStart + 0x40) | 1)
		steps(t, th, 1)

		if th.Ctx.ISet != ISetThumb {
			t.Errorf("ISet = %v, want Thumb", th.Ctx.ISet)
		}
		if th.PC != CodeSegmentStart+0x40 {
			t.Errorf("PC = 0x%08X, want 0x%08X", th.PC, CodeSegmentStart+0x40)
		}
	})

	t.Run("CBZ taken and CBNZ not taken", func(t *testing.T) {
		th := newTestThread(t)
		start := th.PC
		loadThumb(t, th, 0xB108) // CBZ R0, .+6 (imm5=1)
		steps(t, th, 1)

		if th.PC != start+6 {
			t.Errorf("CBZ: PC = 0x%08X, want 0x%08X", th.PC, start+6)
		}

		th2 := newTestThread(t)
		start = th2.PC
		loadThumb(t, th2, 0xB908) // CBNZ R0, .+6 with R0 == 0
		steps(t, th2, 1)

		if th2.PC != start+2 {
			t.Errorf("CBNZ: PC = 0x%08X, want fall-through", th2.PC)
		}
	})
}

func TestHostCallEscape(t *testing.T) {
	th := newTestThread(t)
	var got uint32
	th.Calls.Register(0x42, "probe", func(ctx *Context) error {
		got = ctx.GPR[0]
		ctx.GPR[0] = 99
		return nil
	})
	th.Ctx.GPR[0] = 7

	loadThumb(t, th, 0xF7F0, 0x0042)
	steps(t, th, 1)

	if got != 7 {
		t.Errorf("host call saw R0 = %d, want 7", got)
	}
	if th.Ctx.GPR[0] != 99 {
		t.Errorf("R0 after host call = %d, want 99", th.Ctx.GPR[0])
	}

	t.Run("unregistered index faults", func(t *testing.T) {
		th := newTestThread(t)
		loadThumb(t, th, 0xF7F0, 0x7777)
		if err := th.Step(); err == nil {
			t.Fatal("expected error for unregistered host call")
		}
	})
}

func TestUnknownOpcode(t *testing.T) {
	th := newTestThread(t)
	loadThumb(t, th, 0xDE00) // UDF: cond field 14 in the B T1 space
	err := th.Step()
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsOpcodeError(err) {
		t.Errorf("error %v not classified as opcode error", err)
	}
}

func TestStubInstruction(t *testing.T) {
	th := newTestThread(t)
	loadThumb(t, th, 0xDF00) // SVC #0: declared but unimplemented
	err := th.Step()
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsOpcodeError(err) {
		t.Errorf("error %v not classified as opcode error", err)
	}
}

func TestExitService(t *testing.T) {
	th := newTestThread(t)
	th.Ctx.GPR[0] = 3
	loadThumb(t, th, 0xF7F0, uint16(CallExitProcess))
	steps(t, th, 1)

	if th.State != StateHalted {
		t.Errorf("state = %v, want halted", th.State)
	}
	if th.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", th.ExitCode)
	}
}

func TestExecutionTraceRecords(t *testing.T) {
	th := newTestThread(t)
	th.Trace = NewExecutionTrace(nil)
	loadThumb(t, th, 0x2005, 0x2805)
	steps(t, th, 2)

	if len(th.Trace.Entries) != 2 {
		t.Fatalf("trace entries = %d, want 2", len(th.Trace.Entries))
	}
	if th.Trace.Entries[0].Mnemonic != "MOV" || th.Trace.Entries[1].Mnemonic != "CMP" {
		t.Errorf("trace mnemonics = %s, %s, want MOV, CMP",
			th.Trace.Entries[0].Mnemonic, th.Trace.Entries[1].Mnemonic)
	}
}
