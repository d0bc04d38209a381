// Package simconfig registers rv32sim's config-file directives (ram,
// load, uart, disk, mtimecmp, gdb, debug) with config/configparser from
// its own init(), the same "small adapter package self-registers its
// directives" shape as the teacher's config/debugconfig. Unlike the
// teacher's device directives, which construct live objects as soon as
// their line is parsed, these simply accumulate into Config: RAM size
// has to be known before the engine (and therefore any peripheral) can
// be built at all, so rv32sim/main builds everything after the whole
// file has been read rather than incrementally during the parse.
package simconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opencore-sim/rv32sim/config/configparser"
)

// Config is the accumulated result of parsing one config file.
type Config struct {
	RAMSize      uint32
	LoadPath     string
	UARTPort     string
	DiskPath     string
	MtimecmpMMIO bool
	GDBPort      string
	DebugSpec    string
}

var current Config

// Get returns the config accumulated by the most recent LoadConfigFile
// call that went through this package's registered directives.
func Get() Config { return current }

func init() {
	configparser.RegisterOption("ram", setRAM)
	configparser.RegisterOption("load", setLoad)
	configparser.RegisterOption("uart", setUART)
	configparser.RegisterOption("disk", setDisk)
	configparser.RegisterOption("mtimecmp", setMtimecmp)
	configparser.RegisterOption("gdb", setGDB)
	configparser.RegisterOptions("debug", setDebug)
}

// setRAM parses sizes like "64M", "512K", or a bare byte count.
func setRAM(first string, _ []configparser.Option) error {
	size, err := parseSize(first)
	if err != nil {
		return err
	}
	current.RAMSize = size
	return nil
}

func parseSize(s string) (uint32, error) {
	s = strings.ToUpper(s)
	mult := uint64(1)
	switch {
	case strings.HasSuffix(s, "M"):
		mult = 1 << 20
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "K"):
		mult = 1 << 10
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("ram: invalid size %q", s)
	}
	total := n * mult
	if total > 0xFFFFFFFF {
		return 0, fmt.Errorf("ram: size %q overflows a 32-bit address space", s)
	}
	return uint32(total), nil
}

func setLoad(first string, _ []configparser.Option) error {
	current.LoadPath = first
	return nil
}

func setUART(first string, _ []configparser.Option) error {
	current.UARTPort = first
	return nil
}

func setDisk(first string, _ []configparser.Option) error {
	current.DiskPath = first
	return nil
}

func setMtimecmp(first string, _ []configparser.Option) error {
	switch strings.ToLower(first) {
	case "mmio":
		current.MtimecmpMMIO = true
	case "csr":
		current.MtimecmpMMIO = false
	default:
		return fmt.Errorf("mtimecmp: expected mmio or csr, got %q", first)
	}
	return nil
}

func setGDB(first string, _ []configparser.Option) error {
	current.GDBPort = first
	return nil
}

func setDebug(first string, opts []configparser.Option) error {
	parts := []string{first}
	for _, o := range opts {
		parts = append(parts, o.Name)
	}
	current.DebugSpec = strings.Join(parts, ",")
	return nil
}
