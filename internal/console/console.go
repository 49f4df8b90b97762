// Package console implements the in-game command line: reading and changing
// config values, inspecting the level and resetting it.
package console

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tomz197/airclash/internal/level"
)

const (
	// Prompt prefixes echoed input lines.
	Prompt = "> "
	// historyLimit caps the lines kept for display.
	historyLimit = 100
)

var (
	ErrUnknownCommand = errors.New("command not recognized")
	ErrUsage          = errors.New("wrong parameters")
)

// Command is one console command.
type Command struct {
	Name  string
	Usage string
	Help  string
	// Args reports whether n arguments after the name are acceptable.
	Args func(n int) bool
	Run  func(args []string) (string, error)
}

func exactly(k int) func(int) bool { return func(n int) bool { return n == k } }
func atMost(k int) func(int) bool  { return func(n int) bool { return n <= k } }

// Console dispatches command lines against a level.
type Console struct {
	level    *level.Level
	logger   *log.Logger
	commands map[string]Command
	history  []string
}

// New registers the built-in commands for l.
func New(l *level.Level, logger *log.Logger) *Console {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Console{
		level:    l,
		logger:   logger,
		commands: make(map[string]Command),
	}
	c.Register(Command{
		Name:  "help",
		Usage: "help [command]",
		Help:  "Lists the commands, or explains one of them.",
		Args:  atMost(1),
		Run:   c.help,
	})
	c.Register(Command{
		Name:  "levelinfo",
		Usage: "levelinfo",
		Help:  "Prints the level geometry, total energy and world counts.",
		Args:  exactly(0),
		Run: func([]string) (string, error) {
			return c.level.Info(), nil
		},
	})
	c.Register(Command{
		Name:  "get",
		Usage: "get <key>",
		Help:  "Prints a config value. Keys: " + strings.Join(c.keys(), ", "),
		Args:  exactly(1),
		Run:   c.get,
	})
	c.Register(Command{
		Name:  "set",
		Usage: "set <key> <value>",
		Help:  "Changes a config value. Booleans take 0 or 1. Keys: " + strings.Join(c.keys(), ", "),
		Args:  exactly(2),
		Run:   c.set,
	})
	c.Register(Command{
		Name:  "reset",
		Usage: "reset",
		Help:  "Rebuilds the level and respawns the units.",
		Args:  exactly(0),
		Run: func([]string) (string, error) {
			if err := c.level.Reset(); err != nil {
				return "", err
			}
			return "level reset", nil
		},
	})
	return c
}

func (c *Console) keys() []string {
	cfg := c.level.Config()
	return cfg.Keys()
}

// Register adds or replaces a command.
func (c *Console) Register(cmd Command) {
	c.commands[cmd.Name] = cmd
}

// Commands returns the command names in sorted order.
func (c *Console) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute runs one command line and records it with its output in the
// history. A bare config key prints that key's value.
func (c *Console) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	c.record(Prompt + strings.TrimSpace(line))

	out, err := c.run(fields[0], fields[1:])
	if err != nil {
		c.logger.Debug("console command failed", "line", line, "err", err)
		c.record(err.Error())
		return "", err
	}
	if out != "" {
		c.record(strings.Split(out, "\n")...)
	}
	return out, nil
}

func (c *Console) run(name string, args []string) (string, error) {
	cmd, ok := c.commands[name]
	if !ok {
		if len(args) == 0 && slices.Contains(c.keys(), name) {
			return c.get([]string{name})
		}
		return "", fmt.Errorf("%w: %q (try help)", ErrUnknownCommand, name)
	}
	if cmd.Args != nil && !cmd.Args(len(args)) {
		return "", fmt.Errorf("%w: usage: %s", ErrUsage, cmd.Usage)
	}
	return cmd.Run(args)
}

func (c *Console) help(args []string) (string, error) {
	if len(args) == 0 {
		return "Use help <command> for help on a command.\nAvailable commands: " +
			strings.Join(c.Commands(), " "), nil
	}
	cmd, ok := c.commands[args[0]]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
	return "Syntax: " + cmd.Usage + "\n" + cmd.Help, nil
}

func (c *Console) get(args []string) (string, error) {
	cfg := c.level.Config()
	v, err := cfg.Get(args[0])
	if err != nil {
		return "", err
	}
	return args[0] + ": " + v, nil
}

func (c *Console) set(args []string) (string, error) {
	cfg := c.level.Config()
	if err := cfg.Set(args[0], args[1]); err != nil {
		return "", err
	}
	c.level.ApplyConfig(cfg)
	c.logger.Info("config changed", "key", args[0], "value", args[1])
	return "set: " + args[0] + " to " + args[1], nil
}

func (c *Console) record(lines ...string) {
	c.history = append(c.history, lines...)
	if over := len(c.history) - historyLimit; over > 0 {
		c.history = slices.Delete(c.history, 0, over)
	}
}

// History returns up to n of the most recent lines, oldest first.
func (c *Console) History(n int) []string {
	if n <= 0 || n > len(c.history) {
		n = len(c.history)
	}
	return c.history[len(c.history)-n:]
}
