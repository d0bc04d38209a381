// Package debugflags holds the process-wide debug category bitmask toggled
// by the config file's "debug" directive (SPEC_FULL.md D8). Any package
// that wants to gate slog.Debug calls behind a category checks Enabled
// before building the log line, so the hot fetch/execute path pays
// nothing when the category is off.
package debugflags

import (
	"strings"
	"sync/atomic"
)

const (
	Inst = 1 << iota // Instruction-by-instruction trace.
	Trap             // Trap/interrupt entry and exit.
	CSR              // CSR reads and writes.
	Mem              // Load/store traffic through the bus.
	IO               // UART and block device activity.
)

var categories = map[string]uint32{
	"INST": Inst,
	"TRAP": Trap,
	"CSR":  CSR,
	"MEM":  Mem,
	"IO":   IO,
}

var mask atomic.Uint32

// Enabled reports whether any of the given categories are currently on.
func Enabled(category uint32) bool {
	return mask.Load()&category != 0
}

// Set parses a comma-separated category list (as written in the config
// file's debug directive) and ORs it into the active mask.
func Set(names string) error {
	var add uint32
	for _, name := range strings.Split(names, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		bit, ok := categories[name]
		if !ok {
			return unknownCategory(name)
		}
		add |= bit
	}
	for {
		old := mask.Load()
		if mask.CompareAndSwap(old, old|add) {
			return nil
		}
	}
}

type unknownCategory string

func (u unknownCategory) Error() string { return "unknown debug category: " + string(u) }
