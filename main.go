package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/neeevans/rpcs3/armv7"
	"github.com/neeevans/rpcs3/config"
	"github.com/neeevans/rpcs3/debugger"
	"github.com/neeevans/rpcs3/loader"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		debugMode   = flag.Bool("debug", false, "Start in line-mode debugger")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		guiMode     = flag.Bool("gui", false, "Use GUI debugger")
		configPath  = flag.String("config", "", "Configuration file (default: platform config dir)")
		baseFlag    = flag.String("base", "", "Image load address (hex or decimal)")
		entryFlag   = flag.String("entry", "", "Entry point; bit 0 selects Thumb")
		maxInstr    = flag.Uint64("max-instructions", 0, "Instruction budget before halt (0: from config)")

		enableTrace     = flag.Bool("trace", false, "Enable execution trace")
		traceFile       = flag.String("trace-file", "", "Trace output file")
		enableFlagTrace = flag.Bool("flag-trace", false, "Enable APSR flag trace")
		flagTraceFile   = flag.String("flag-trace-file", "", "Flag trace output file")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("PSV user-mode emulator %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	base, err := parseAddress(*baseFlag, cfg.Execution.DefaultBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid base address: %v\n", err)
		os.Exit(1)
	}
	entry, err := parseAddress(*entryFlag, "0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid entry point: %v\n", err)
		os.Exit(1)
	}

	mem := armv7.NewMemory()
	calls := armv7.NewHostCallTable()
	armv7.RegisterDefaultServices(calls)

	img, err := loader.LoadFile(mem, imagePath, base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	thread := loader.NewMainThread(mem, calls, img, entry)
	if *maxInstr != 0 {
		thread.MaxInstructions = *maxInstr
	} else {
		thread.MaxInstructions = cfg.Execution.MaxInstructions
	}

	closers := setupTraces(thread, cfg, *enableTrace, *traceFile, *enableFlagTrace, *flagTraceFile)
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	switch {
	case *guiMode:
		d := debugger.New(thread)
		d.MaxRunInstructions = cfg.Debugger.RunBudget
		if err := debugger.RunGUI(d); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case *tuiMode:
		d := debugger.New(thread)
		d.MaxRunInstructions = cfg.Debugger.RunBudget
		if err := debugger.NewTUI(d).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case *debugMode:
		d := debugger.New(thread)
		d.MaxRunInstructions = cfg.Debugger.RunBudget
		if err := debugger.RunCommandLoop(d, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		if err := thread.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, thread.DumpState())
			os.Exit(1)
		}
		os.Exit(int(thread.ExitCode))
	}
}

// parseAddress parses a flag value (0x-prefixed hex or decimal),
// falling back to a default string.
func parseAddress(value, fallback string) (uint32, error) {
	if value == "" {
		value = fallback
	}
	v, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// setupTraces wires the requested diagnostic sinks and returns the
// files to close at exit.
func setupTraces(thread *armv7.Thread, cfg *config.Config, trace bool, tracePath string, flagTrace bool, flagTracePath string) []*os.File {
	var closers []*os.File

	open := func(path, fallback string) *os.File {
		if path == "" {
			path = fallback
		}
		f, err := os.Create(filepath.Clean(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open trace file %s: %v\n", path, err)
			return nil
		}
		closers = append(closers, f)
		return f
	}

	if trace || cfg.Execution.EnableTrace {
		if f := open(tracePath, cfg.Trace.OutputFile); f != nil {
			thread.Trace = armv7.NewExecutionTrace(f)
			thread.Trace.MaxEntries = cfg.Trace.MaxEntries
		}
	}
	if flagTrace || cfg.Execution.EnableFlagTrace {
		if f := open(flagTracePath, cfg.Trace.FlagOutputFile); f != nil {
			thread.FlagTrace = armv7.NewFlagTrace(f)
		}
	}
	return closers
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `PSV user-mode emulator

Usage: psv-emu [options] <image.bin>

The image is a flat ARMv7 binary placed at -base (default from the
config file). Execution starts at -entry; bit 0 of the entry address
selects the Thumb instruction set.

Options:
`)
	flag.PrintDefaults()
}
