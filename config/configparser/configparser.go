// Package configparser reads rv32sim's line-oriented config file. The
// grammar and the self-registration scheme (RegisterOption/RegisterSwitch
// called from an init() in each directive's owning package) are carried
// over from the teacher's device-config parser; the directive set itself
// is this simulator's own (ram, load, uart, disk, mtimecmp, gdb, debug)
// rather than IBM 370 channel/device lines.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Option is one space- or comma-separated token following a directive's
// first argument, e.g. the "mmio" in "mtimecmp mmio".
type Option struct {
	Name     string
	EqualOpt string
	Value    []*string
}

const (
	TypeOption = 1 + iota // Directive takes exactly one bare argument.
	TypeOptions           // Directive takes one argument plus trailing options.
	TypeSwitch            // Directive takes no arguments at all.
)

type directiveDef struct {
	create func(first string, opts []Option) error
	ty     int
}

var directives = map[string]directiveDef{}

var lineNumber int

// RegisterOption should be called from an init() in the package that owns
// the directive, e.g. config/simconfig registers "uart".
func RegisterOption(name string, fn func(first string, opts []Option) error) {
	directives[strings.ToUpper(name)] = directiveDef{create: fn, ty: TypeOption}
}

// RegisterOptions registers a directive that accepts a first argument
// followed by a comma-separated option list, e.g. "debug INST,TRAP".
func RegisterOptions(name string, fn func(first string, opts []Option) error) {
	directives[strings.ToUpper(name)] = directiveDef{create: fn, ty: TypeOptions}
}

// RegisterSwitch registers a bare flag directive with no arguments.
func RegisterSwitch(name string, fn func() error) {
	directives[strings.ToUpper(name)] = directiveDef{
		create: func(string, []Option) error { return fn() },
		ty:     TypeSwitch,
	}
}

type optionLine struct {
	line string
	pos  int
}

// LoadConfigFile reads name line by line and dispatches each directive to
// its registered handler.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		line := optionLine{}
		line.line, err = reader.ReadString('\n')
		lineNumber++
		if len(line.line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if perr := line.parseLine(); perr != nil {
			return perr
		}
	}
	return nil
}

func (line *optionLine) parseLine() error {
	name := line.parseWord()
	if name == "" {
		return nil
	}

	directive, ok := directives[strings.ToUpper(name)]
	if !ok {
		return fmt.Errorf("no directive %q registered, line: %d", name, lineNumber)
	}

	switch directive.ty {
	case TypeOption:
		first := line.parseWord()
		if first == "" {
			return fmt.Errorf("directive %s requires an argument, line: %d", name, lineNumber)
		}
		return directive.create(first, nil)

	case TypeOptions:
		line.skipSpace()
		first := line.parseCommaToken()
		if first == "" {
			return fmt.Errorf("directive %s requires an argument, line: %d", name, lineNumber)
		}
		line.skipSpace()
		if !line.isEOL() && line.line[line.pos] == ',' {
			line.pos++
		}
		opts, err := line.parseOptions()
		if err != nil {
			return err
		}
		return directive.create(first, opts)

	case TypeSwitch:
		line.skipSpace()
		if !line.isEOL() {
			return fmt.Errorf("switch directive %s takes no arguments, line: %d", name, lineNumber)
		}
		return directive.create("", nil)
	}
	return nil
}

func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *optionLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

func (line *optionLine) getNext() byte {
	line.pos++
	if line.isEOL() {
		return 0
	}
	return line.line[line.pos]
}

// parseWord reads a single whitespace-delimited token, honoring '#' as a
// comment-to-end-of-line marker.
func (line *optionLine) parseWord() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}

	value := ""
	for {
		if line.isEOL() {
			break
		}
		by := line.line[line.pos]
		if unicode.IsSpace(rune(by)) {
			break
		}
		value += string(by)
		line.pos++
	}
	return value
}

// parseOptions reads a comma-separated list of tokens trailing a
// directive's first argument.
func (line *optionLine) parseOptions() ([]Option, error) {
	opts := []Option{}
	line.skipSpace()
	for !line.isEOL() {
		name := line.parseCommaToken()
		if name == "" {
			break
		}
		opts = append(opts, Option{Name: name})
		line.skipSpace()
		if !line.isEOL() && line.line[line.pos] == ',' {
			line.pos++
		}
		line.skipSpace()
	}
	return opts, nil
}

func (line *optionLine) parseCommaToken() string {
	value := ""
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsSpace(rune(by)) || by == ',' {
			break
		}
		value += string(by)
		line.pos++
	}
	return value
}
