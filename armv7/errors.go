package armv7

import "fmt"

// Encoding identifies which bit layout of a mnemonic an instruction
// word uses. The dispatcher chooses the variant; semantic routines
// never re-derive it.
type Encoding int

const (
	T1 Encoding = iota
	T2
	T3
	T4
	A1
	A2
)

// String returns the ARMARM name of the encoding variant.
func (e Encoding) String() string {
	switch e {
	case T1:
		return "T1"
	case T2:
		return "T2"
	case T3:
		return "T3"
	case T4:
		return "T4"
	case A1:
		return "A1"
	case A2:
		return "A2"
	}
	return "???"
}

// Code is one instruction word: a 16-bit Thumb halfword, two Thumb
// halfwords with the first in the high 16 bits, or a 32-bit ARM word.
type Code uint32

// HW0 returns the low halfword (the second halfword of a 32-bit Thumb
// instruction).
func (c Code) HW0() uint16 {
	return uint16(c)
}

// HW1 returns the high halfword (the leading halfword of a 32-bit
// Thumb instruction).
func (c Code) HW1() uint16 {
	return uint16(c >> 16)
}

// OpcodeError reports a decode-side rejection or an unimplemented
// routine. Rejections mirror the ARMARM's UNDEFINED / UNPREDICTABLE /
// "aliases another instruction" clauses: the dispatcher should never
// deliver such a pattern, so surfacing them catches dispatcher bugs.
// When a rejection is returned, no register, flag or memory write has
// happened; the IT state, which routines advance before their reject
// checks, has moved on by one slot.
type OpcodeError struct {
	Mnemonic       string
	Encoding       Encoding
	Predicate      string // text of the predicate that fired, empty for stubs
	Reason         string
	NotImplemented bool
}

// Error implements the error interface.
func (e *OpcodeError) Error() string {
	if e.Predicate == "" {
		return fmt.Sprintf("%s(%s) error: %s", e.Mnemonic, e.Encoding, e.Reason)
	}
	return fmt.Sprintf("%s(%s) error: %s (%s)", e.Mnemonic, e.Encoding, e.Reason, e.Predicate)
}

// opErr builds the rejection error for a failed validation predicate.
func opErr(mnemonic string, enc Encoding, predicate, reason string) error {
	return &OpcodeError{
		Mnemonic:  mnemonic,
		Encoding:  enc,
		Predicate: predicate,
		Reason:    reason,
	}
}

// notImplErr reports a declared but unimplemented routine or encoding.
func notImplErr(mnemonic string, enc Encoding) error {
	return &OpcodeError{
		Mnemonic:       mnemonic,
		Encoding:       enc,
		Reason:         "not implemented",
		NotImplemented: true,
	}
}

// UnknownOpcodeError reports an instruction word the dispatcher could
// not map to any mnemonic. It carries the raw halfwords for diagnosis.
// Null marks the all-zero word, the usual signature of a wild branch
// into cleared memory.
type UnknownOpcodeError struct {
	Code Code
	Null bool
}

// Error implements the error interface.
func (e *UnknownOpcodeError) Error() string {
	if e.Null {
		return fmt.Sprintf("null opcode found: 0x%04x 0x%04x", e.Code.HW1(), e.Code.HW0())
	}
	return fmt.Sprintf("unknown/illegal opcode: 0x%04x 0x%04x", e.Code.HW1(), e.Code.HW0())
}
