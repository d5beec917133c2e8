package armv7

// Declared-but-unimplemented mnemonics. Guest code reaching one of
// these terminates with a uniform "not implemented" fault carrying the
// mnemonic and encoding; the dispatcher decides whether that is fatal.
// The set covers the NEON/VFP space, the saturating and packed-SIMD
// integer families, and system instructions PSV user code has no
// business executing.

// stub builds a routine that fails with "not implemented".
func stub(mnemonic string) instrFunc {
	return func(ctx *Context, code Code, enc Encoding) error {
		return notImplErr(mnemonic, enc)
	}
}

// unk reports an instruction word the decoder could not attribute to
// any mnemonic.
func unk(ctx *Context, code Code, enc Encoding) error {
	return &UnknownOpcodeError{Code: code}
}

// nullOp catches the all-zero word that a wild branch into cleared
// memory produces.
func nullOp(ctx *Context, code Code, enc Encoding) error {
	return &UnknownOpcodeError{Code: code, Null: true}
}
