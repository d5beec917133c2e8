package config

import (
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Execution.MaxInstructions != 10_000_000 {
		t.Errorf("MaxInstructions = %d, want 10000000", cfg.Execution.MaxInstructions)
	}
	if cfg.Execution.DefaultEntry != "0x81000001" {
		t.Errorf("DefaultEntry = %q, want Thumb entry", cfg.Execution.DefaultEntry)
	}
	if cfg.Trace.OutputFile == "" {
		t.Error("trace output file unset")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Execution.MaxInstructions != DefaultConfig().Execution.MaxInstructions {
		t.Error("missing file did not yield defaults")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxInstructions = 1234
	cfg.Execution.EnableTrace = true
	cfg.Debugger.RunBudget = 99

	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Execution.MaxInstructions != 1234 || !loaded.Execution.EnableTrace {
		t.Errorf("execution section did not round-trip: %+v", loaded.Execution)
	}
	if loaded.Debugger.RunBudget != 99 {
		t.Errorf("RunBudget = %d, want 99", loaded.Debugger.RunBudget)
	}
}
