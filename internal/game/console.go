package game

import (
	"fmt"
	"sort"
	"strings"
)

// MaxConsoleLines bounds the console scrollback.
const MaxConsoleLines = 64

// Command is a console command handler. args[0] is the command name.
type Command func(args []string)

type consoleCommand struct {
	help string
	run  Command
}

// Console is the in-game command line. While Mode is on it captures the
// keyboard and the hero ignores input.
type Console struct {
	Mode bool

	// Echo, when set, receives every printed line.
	Echo func(line string)

	lines    []string
	commands map[string]consoleCommand
}

// NewConsole creates a console with the help command registered.
func NewConsole() *Console {
	c := &Console{commands: make(map[string]consoleCommand)}
	c.Register("help", "list commands", c.help)
	return c
}

// Register adds or replaces a command.
func (c *Console) Register(name, help string, run Command) {
	c.commands[name] = consoleCommand{help: help, run: run}
}

// Exec runs one input line.
func (c *Console) Exec(line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	c.Printf("> %s", strings.Join(args, " "))

	cmd, ok := c.commands[args[0]]
	if !ok {
		c.Printf("%s: command not found", args[0])
		return
	}
	cmd.run(args)
}

// Printf appends a line to the scrollback.
func (c *Console) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if c.Echo != nil {
		c.Echo(line)
	}
	c.lines = append(c.lines, line)
	if n := len(c.lines) - MaxConsoleLines; n > 0 {
		c.lines = append(c.lines[:0], c.lines[n:]...)
	}
}

// Lines returns the scrollback, oldest first.
func (c *Console) Lines() []string {
	return c.lines
}

// Clear empties the scrollback.
func (c *Console) Clear() {
	c.lines = c.lines[:0]
}

func (c *Console) help([]string) {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.Printf("%-8s %s", name, c.commands[name].help)
	}
}
