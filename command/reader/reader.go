// Package reader drives the interactive monitor's REPL, wrapping
// github.com/peterh/liner exactly as the teacher's ConsoleReader does:
// Ctrl-C aborts the prompt rather than the process, tab completion comes
// from the command parser, and accepted lines go into history.
package reader

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/peterh/liner"

	"github.com/opencore-sim/rv32sim/command/parser"
	"github.com/opencore-sim/rv32sim/emu/core"
)

func ConsoleReader(c *core.Core) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string {
		return parser.CompleteCmd(l)
	})

	for {
		command, err := line.Prompt("rv32sim> ")
		if err == nil {
			line.AppendHistory(command)
			quit, err := parser.ProcessCommand(command, c)
			if err != nil {
				fmt.Println("Error: " + err.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		slog.Error("error reading line: " + err.Error())
	}
}
