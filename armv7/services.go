package armv7

import (
	"fmt"
)

// Well-known host-call indices registered by RegisterDefaultServices.
// Real PSV module tables are resolved by the loader; these cover the
// minimal process environment standalone images need.
const (
	CallExitProcess  = 0x0000 // R0 = exit code
	CallWriteConsole = 0x0001 // R0 = address, R1 = length
	CallWriteChar    = 0x0002 // R0 = character
	CallThreadID     = 0x0003 // returns a stable per-thread token in R0
)

// MaxConsoleWrite bounds a single console write so a corrupt length
// register cannot ask the host for gigabytes.
const MaxConsoleWrite = 1 << 20

// RegisterDefaultServices installs the baseline process services into a
// host-call table.
func RegisterDefaultServices(t *HostCallTable) {
	t.Register(CallExitProcess, "exit_process", callExitProcess)
	t.Register(CallWriteConsole, "write_console", callWriteConsole)
	t.Register(CallWriteChar, "write_char", callWriteChar)
	t.Register(CallThreadID, "thread_id", callThreadID)
}

func callExitProcess(ctx *Context) error {
	ctx.Thread.Halt(int32(ctx.GPR[0]))
	return nil
}

func callWriteConsole(ctx *Context) error {
	addr := ctx.GPR[0]
	length := ctx.GPR[1]
	if length > MaxConsoleWrite {
		return fmt.Errorf("console write of %d bytes exceeds limit", length)
	}
	data, err := ctx.Mem.GetBytes(addr, length)
	if err != nil {
		return err
	}
	_, err = ctx.Thread.OutputWriter.Write(data)
	return err
}

func callWriteChar(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Thread.OutputWriter, "%c", rune(ctx.GPR[0]))
	return err
}

func callThreadID(ctx *Context) error {
	ctx.GPR[0] = ctx.Thread.ID
	return nil
}
