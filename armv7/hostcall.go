package armv7

import (
	"fmt"
)

// HostCall is an emulated platform service. Arguments arrive in R0-R3
// per the AAPCS; the result goes back in R0.
type HostCall func(ctx *Context) error

// HostCallTable maps the 16-bit indices carried by the HACK escape
// opcode to host-resolved services. One table is shared by every guest
// thread; registration happens before any thread runs.
type HostCallTable struct {
	entries map[uint16]hostCallEntry
}

type hostCallEntry struct {
	name string
	fn   HostCall
}

// NewHostCallTable creates an empty table.
func NewHostCallTable() *HostCallTable {
	return &HostCallTable{entries: make(map[uint16]hostCallEntry)}
}

// Register binds a service to an index. A later registration replaces
// an earlier one.
func (t *HostCallTable) Register(index uint16, name string, fn HostCall) {
	t.entries[index] = hostCallEntry{name: name, fn: fn}
}

// Name returns the registered name for an index, or empty.
func (t *HostCallTable) Name(index uint16) string {
	return t.entries[index].name
}

// Execute invokes the service bound to index.
func (t *HostCallTable) Execute(ctx *Context, index uint16) error {
	e, ok := t.entries[index]
	if !ok {
		return fmt.Errorf("host call to unregistered function index %d", index)
	}
	if err := e.fn(ctx); err != nil {
		return fmt.Errorf("host call %s (index %d): %w", e.name, index, err)
	}
	return nil
}
