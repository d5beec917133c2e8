package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/neeevans/rpcs3/armv7"
)

// RunCommandLoop reads debugger commands from r and writes responses
// to w until quit or EOF. This is the plain line-mode front end; the
// TUI and GUI layer the same Debugger methods behind panels.
func RunCommandLoop(d *Debugger, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	lastLine := ""

	fmt.Fprintln(w, "PSV debugger. Type 'help' for commands.")
	for {
		fmt.Fprint(w, "(psv) ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			line = lastLine
		}
		lastLine = line

		if quit := execCommand(d, w, line); quit {
			return nil
		}
	}
}

// execCommand dispatches one command line; it reports whether the loop
// should exit.
func execCommand(d *Debugger, w io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help", "h":
		printHelp(w)

	case "step", "s":
		n := 1
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
				n = v
			}
		}
		for i := 0; i < n; i++ {
			if err := d.Step(); err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				break
			}
		}
		fmt.Fprint(w, d.FormatDisassembly(d.Thread.PC, 1))

	case "continue", "c", "run":
		if err := d.Continue(); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
		switch d.Thread.State {
		case armv7.StateBreakpoint:
			fmt.Fprintf(w, "breakpoint hit at 0x%08X\n", d.Thread.PC)
		case armv7.StateHalted:
			fmt.Fprintf(w, "thread halted, exit code %d\n", d.Thread.ExitCode)
		}

	case "regs", "r":
		fmt.Fprint(w, d.FormatRegisters())

	case "mem", "x":
		if len(args) < 1 {
			fmt.Fprintln(w, "usage: mem <address> [length]")
			break
		}
		addr, err := d.ResolveAddress(args[0])
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			break
		}
		length := uint32(64)
		if len(args) > 1 {
			if v, err := strconv.ParseUint(args[1], 0, 32); err == nil {
				length = uint32(v)
			}
		}
		fmt.Fprint(w, d.FormatMemory(addr, length))

	case "disasm", "d":
		addr := d.Thread.PC
		if len(args) > 0 {
			if v, err := d.ResolveAddress(args[0]); err == nil {
				addr = v
			}
		}
		fmt.Fprint(w, d.FormatDisassembly(addr, 8))

	case "stack":
		fmt.Fprint(w, d.FormatStack(16))

	case "break", "b":
		if len(args) < 1 {
			for _, bp := range d.Breakpoints.List() {
				state := "enabled"
				if !bp.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(w, "%3d  0x%08X  %s  hits=%d\n", bp.ID, bp.Address, state, bp.HitCount)
			}
			break
		}
		addr, err := d.ResolveAddress(args[0])
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			break
		}
		bp := d.Breakpoints.Add(addr, false)
		fmt.Fprintf(w, "breakpoint %d at 0x%08X\n", bp.ID, bp.Address)

	case "delete":
		if len(args) < 1 {
			fmt.Fprintln(w, "usage: delete <id>")
			break
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(w, "error: invalid id %q\n", args[0])
			break
		}
		if err := d.Breakpoints.Delete(id); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}

	case "quit", "q", "exit":
		return true

	default:
		fmt.Fprintf(w, "unknown command %q; type 'help'\n", cmd)
	}
	return false
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Commands:
  step [n] (s)      execute n instructions
  continue (c)      run until breakpoint or halt
  regs (r)          show registers and flags
  mem <addr> [len]  hex dump of guest memory
  disasm [addr] (d) disassemble from addr (default PC)
  stack             show words at the stack pointer
  break [addr] (b)  set a breakpoint, or list them
  delete <id>       remove a breakpoint
  quit (q)          leave the debugger
An empty line repeats the previous command.
`)
}
