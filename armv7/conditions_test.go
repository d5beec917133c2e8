package armv7

import "testing"

func TestConditionPassed(t *testing.T) {
	tests := []struct {
		name       string
		n, z, c, v bool
		cond       uint32
		want       bool
	}{
		{"EQ with Z", false, true, false, false, condEQ, true},
		{"EQ without Z", false, false, false, false, condEQ, false},
		{"NE without Z", false, false, false, false, condNE, true},
		{"CS with C", false, false, true, false, condCS, true},
		{"CC with C", false, false, true, false, condCC, false},
		{"MI with N", true, false, false, false, condMI, true},
		{"PL with N", true, false, false, false, condPL, false},
		{"VS with V", false, false, false, true, condVS, true},
		{"VC without V", false, false, false, false, condVC, true},
		{"HI needs C and not Z", false, false, true, false, condHI, true},
		{"HI fails on Z", false, true, true, false, condHI, false},
		{"LS on Z", false, true, true, false, condLS, true},
		{"GE when N == V", true, false, false, true, condGE, true},
		{"GE when N != V", true, false, false, false, condGE, false},
		{"LT when N != V", true, false, false, false, condLT, true},
		{"GT needs not Z", false, false, false, false, condGT, true},
		{"GT fails on Z", false, true, false, false, condGT, false},
		{"LE on Z", false, true, false, false, condLE, true},
		{"AL always", true, true, true, true, condAlways, true},
		{"NV treated as always", false, false, false, false, condNever, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{}
			ctx.APSR = APSR{N: tt.n, Z: tt.z, C: tt.c, V: tt.v}
			if got := ConditionPassed(ctx, tt.cond); got != tt.want {
				t.Errorf("ConditionPassed(%s) = %v, want %v", condName(tt.cond), got, tt.want)
			}
		})
	}
}

func TestITStateAdvance(t *testing.T) {
	t.Run("inactive returns always", func(t *testing.T) {
		var it ITState
		if it.Active() {
			t.Fatal("zero state reported active")
		}
		if cond := it.Advance(); cond != condAlways {
			t.Errorf("Advance() on empty state = %#x, want %#x", cond, condAlways)
		}
	})

	t.Run("single slot IT EQ", func(t *testing.T) {
		var it ITState
		it.Set(0x08) // IT EQ: firstcond 0000, mask 1000

		if !it.Active() {
			t.Fatal("state not active after Set")
		}
		if cond := it.Advance(); cond != condEQ {
			t.Errorf("first slot cond = %#x, want EQ", cond)
		}
		if it.Active() {
			t.Error("state still active after final slot")
		}
	})

	t.Run("ITT EQ runs two then-slots", func(t *testing.T) {
		var it ITState
		it.Set(0x04) // ITT EQ: firstcond 0000, mask 0100

		if cond := it.Advance(); cond != condEQ {
			t.Errorf("first slot cond = %#x, want EQ", cond)
		}
		if !it.Active() {
			t.Fatal("state cleared before second slot")
		}
		if cond := it.Advance(); cond != condEQ {
			t.Errorf("second slot cond = %#x, want EQ", cond)
		}
		if it.Active() {
			t.Error("state still active after block")
		}
	})

	t.Run("ITE NE inverts the else slot", func(t *testing.T) {
		var it ITState
		// ITE NE: firstcond 0001, else slot carries the inverted low
		// bit: mask 0100 with bit replaced by ~cond0 = 0 -> 0b0100.
		it.Set(0x14)

		if cond := it.Advance(); cond != condNE {
			t.Errorf("then slot cond = %#x, want NE", cond)
		}
		if cond := it.Advance(); cond != condEQ {
			t.Errorf("else slot cond = %#x, want EQ", cond)
		}
		if it.Active() {
			t.Error("state still active after block")
		}
	})
}
