package armv7

import (
	"testing"
)

func TestLSLCCarry(t *testing.T) {
	// The carry out of LSL by n is bit 32-n of the input.
	values := []uint32{0, 1, 0x80000000, 0xFFFFFFFF, 0xDEADBEEF, 0x12345678}
	for _, x := range values {
		for n := uint32(1); n <= 32; n++ {
			_, carry := LSLC(x, n, false)
			want := x>>(32-n)&1 != 0
			if n == 32 {
				want = x&1 != 0
			}
			if carry != want {
				t.Errorf("LSLC(0x%08X, %d) carry = %v, want %v", x, n, carry, want)
			}
		}
	}
}

func TestLSRCCarry(t *testing.T) {
	values := []uint32{0, 1, 0x80000000, 0xFFFFFFFF, 0xDEADBEEF, 0x12345678}
	for _, x := range values {
		for n := uint32(1); n <= 32; n++ {
			_, carry := LSRC(x, n, false)
			want := x>>(n-1)&1 != 0
			if carry != want {
				t.Errorf("LSRC(0x%08X, %d) carry = %v, want %v", x, n, carry, want)
			}
		}
	}
}

func TestShiftContracts(t *testing.T) {
	tests := []struct {
		name      string
		typ       ShiftType
		x         uint32
		n         uint32
		carryIn   bool
		want      uint32
		wantCarry bool
	}{
		{"LSL zero is identity", ShiftLSL, 0xDEADBEEF, 0, true, 0xDEADBEEF, true},
		{"LSL by 4", ShiftLSL, 0x0000000F, 4, false, 0x000000F0, false},
		{"LSL by 32", ShiftLSL, 0x00000001, 32, false, 0, true},
		{"LSL past 32", ShiftLSL, 0xFFFFFFFF, 33, true, 0, false},
		{"LSR zero is identity", ShiftLSR, 0xDEADBEEF, 0, true, 0xDEADBEEF, true},
		{"LSR by 8", ShiftLSR, 0xAB00, 8, false, 0xAB, false},
		{"LSR by 32", ShiftLSR, 0x80000000, 32, false, 0, true},
		{"LSR past 32", ShiftLSR, 0xFFFFFFFF, 40, true, 0, false},
		{"ASR by 4 negative", ShiftASR, 0x80000000, 4, false, 0xF8000000, false},
		{"ASR by 32 negative", ShiftASR, 0x80000000, 32, false, 0xFFFFFFFF, true},
		{"ASR past 32 positive", ShiftASR, 0x7FFFFFFF, 40, false, 0, false},
		{"ROR by 8", ShiftROR, 0x000000AB, 8, false, 0xAB000000, true},
		{"ROR by 32 is identity with carry", ShiftROR, 0x80000001, 32, false, 0x80000001, true},
		{"ROR by 36 wraps to 4", ShiftROR, 0x000000A5, 36, false, 0x5000000A, false},
		{"RRX with carry in", ShiftRRX, 0x00000001, 1, true, 0x80000000, true},
		{"RRX without carry in", ShiftRRX, 0x00000002, 1, false, 0x00000001, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, carry := ShiftC(tt.x, tt.typ, tt.n, tt.carryIn)
			if got != tt.want || carry != tt.wantCarry {
				t.Errorf("ShiftC(0x%08X, %v, %d, %v) = (0x%08X, %v), want (0x%08X, %v)",
					tt.x, tt.typ, tt.n, tt.carryIn, got, carry, tt.want, tt.wantCarry)
			}
		})
	}
}

func TestAddWithCarryComparison(t *testing.T) {
	// After CMP a, b (AddWithCarry(a, ^b, true)): Z iff a == b, C iff
	// a >= b unsigned, N iff the signed difference is negative, V iff
	// the signed subtraction overflowed.
	values := []uint32{0, 1, 2, 0x7FFFFFFF, 0x80000000, 0x80000001, 0xFFFFFFFE, 0xFFFFFFFF}
	for _, a := range values {
		for _, b := range values {
			res, carry, overflow := AddWithCarry(a, ^b, true)

			if gotZ := res == 0; gotZ != (a == b) {
				t.Errorf("CMP(0x%08X, 0x%08X): Z = %v, want %v", a, b, gotZ, a == b)
			}
			if carry != (a >= b) {
				t.Errorf("CMP(0x%08X, 0x%08X): C = %v, want %v", a, b, carry, a >= b)
			}
			diff := int64(int32(a)) - int64(int32(b))
			if gotN := res&signBit != 0; gotN != (int32(a-b) < 0) {
				t.Errorf("CMP(0x%08X, 0x%08X): N = %v, want %v", a, b, gotN, int32(a-b) < 0)
			}
			wantV := diff < -0x80000000 || diff > 0x7FFFFFFF
			if overflow != wantV {
				t.Errorf("CMP(0x%08X, 0x%08X): V = %v, want %v", a, b, overflow, wantV)
			}
		}
	}
}

func TestAddWithCarryAddition(t *testing.T) {
	tests := []struct {
		name         string
		x, y         uint32
		carryIn      bool
		want         uint32
		wantC, wantV bool
	}{
		{"no carry", 1, 2, false, 3, false, false},
		{"carry in", 1, 2, true, 4, false, false},
		{"unsigned wrap", 0xFFFFFFFF, 1, false, 0, true, false},
		{"signed overflow", 0x7FFFFFFF, 1, false, 0x80000000, false, true},
		{"both", 0x80000000, 0x80000000, false, 0, true, true},
		{"carry in wraps", 0xFFFFFFFF, 0, true, 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, c, v := AddWithCarry(tt.x, tt.y, tt.carryIn)
			if res != tt.want || c != tt.wantC || v != tt.wantV {
				t.Errorf("AddWithCarry(0x%08X, 0x%08X, %v) = (0x%08X, %v, %v), want (0x%08X, %v, %v)",
					tt.x, tt.y, tt.carryIn, res, c, v, tt.want, tt.wantC, tt.wantV)
			}
		})
	}
}

func TestThumbExpandImm(t *testing.T) {
	tests := []struct {
		name      string
		imm12     uint32
		carryIn   bool
		want      uint32
		wantCarry bool
	}{
		{"byte", 0x0AB, true, 0x000000AB, true},
		{"byte carry through", 0x0AB, false, 0x000000AB, false},
		{"halfword pair", 0x1AB, true, 0x00AB00AB, true},
		{"shifted pair", 0x2AB, false, 0xAB00AB00, false},
		{"all lanes", 0x3AB, true, 0xABABABAB, true},
		{"rotated", 0x48F, false, 0x47800000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, carry := ThumbExpandImmC(tt.imm12, tt.carryIn)
			if got != tt.want || carry != tt.wantCarry {
				t.Errorf("ThumbExpandImmC(0x%03X, %v) = (0x%08X, %v), want (0x%08X, %v)",
					tt.imm12, tt.carryIn, got, carry, tt.want, tt.wantCarry)
			}
		})
	}
}

func TestDecodeImmShift(t *testing.T) {
	tests := []struct {
		typ, imm5  uint32
		wantType   ShiftType
		wantAmount uint32
	}{
		{0, 0, ShiftLSL, 0},
		{0, 17, ShiftLSL, 17},
		{1, 0, ShiftLSR, 32},
		{1, 5, ShiftLSR, 5},
		{2, 0, ShiftASR, 32},
		{2, 31, ShiftASR, 31},
		{3, 0, ShiftRRX, 1},
		{3, 9, ShiftROR, 9},
	}

	for _, tt := range tests {
		gotType, gotAmount := DecodeImmShift(tt.typ, tt.imm5)
		if gotType != tt.wantType || gotAmount != tt.wantAmount {
			t.Errorf("DecodeImmShift(%d, %d) = (%v, %d), want (%v, %d)",
				tt.typ, tt.imm5, gotType, gotAmount, tt.wantType, tt.wantAmount)
		}
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		x     uint32
		width uint
		want  uint32
	}{
		{0xFF, 8, 0xFFFFFFFF},
		{0x7F, 8, 0x7F},
		{0x100, 9, 0xFFFFFF00},
		{0x0FF, 9, 0xFF},
		{0x8000, 16, 0xFFFF8000},
	}

	for _, tt := range tests {
		if got := signExtend(tt.x, tt.width); got != tt.want {
			t.Errorf("signExtend(0x%X, %d) = 0x%08X, want 0x%08X", tt.x, tt.width, got, tt.want)
		}
	}
}
