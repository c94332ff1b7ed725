// Package console implements the interactive override console: a REPL for
// editing a panel's controls and starting the fuzzer from a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/fuzzpanel/pkg/panel"
)

// Console provides an interactive REPL over one panel.
type Console struct {
	panel  *panel.Panel
	sender panel.Sender
	output io.Writer
	rl     *readline.Instance
}

// New creates a console for p. Started runs are posted through sender.
func New(p *panel.Panel, sender panel.Sender) *Console {
	return &Console{
		panel:  p,
		sender: sender,
		output: os.Stdout,
	}
}

// SetOutput redirects command output.
func (c *Console) SetOutput(w io.Writer) {
	c.output = w
}

// Run starts the interactive REPL loop.
func (c *Console) Run(ctx context.Context) error {
	var completer = readline.NewPrefixCompleter()
	for _, cmd := range []string{"list", "extract", "start", "release", "options", "help", "quit"} {
		completer.Children = append(completer.Children, readline.PcItem(cmd))
	}
	for _, cmd := range []string{"set", "clear", "check", "uncheck"} {
		completer.Children = append(completer.Children,
			readline.PcItem(cmd, readline.PcItemDynamic(c.controlIDs)))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.buildPrompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	c.rl = rl
	defer rl.Close()

	fmt.Fprintf(c.output, "fuzzpanel console, %d controls\n", c.panel.Form().Len())
	fmt.Fprintf(c.output, "Type 'help' for available commands, 'start' to run the fuzzer.\n\n")

	for {
		if ctx.Err() != nil {
			return nil
		}
		rl.SetPrompt(c.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		if c.Exec(line) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the console should exit.
func (c *Console) Exec(line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "list", "ls", "l":
		c.handleList()
	case "set":
		c.handleSet(parts)
	case "clear":
		c.handleClear(parts)
	case "check":
		c.handleCheck(parts, true)
	case "uncheck":
		c.handleCheck(parts, false)
	case "extract", "x":
		c.handleExtract()
	case "start", "s":
		c.handleStart()
	case "release":
		c.handleRelease()
	case "options", "o":
		c.handleOptions()
	case "help", "?":
		c.handleHelp()
	case "quit", "q":
		fmt.Fprintf(c.output, "Exiting console.\n")
		return true
	default:
		fmt.Fprintf(c.output, "Unknown command: %q. Type 'help' for available commands.\n", parts[0])
	}
	return false
}

// buildPrompt creates the prompt string: fuzz[N args]> or fuzz[running]>
func (c *Console) buildPrompt() string {
	if c.panel.Busy() {
		return "fuzz[running]> "
	}
	return fmt.Sprintf("fuzz[%d args]> ", countArgs(c.panel))
}

func (c *Console) controlIDs(string) []string {
	controls := c.panel.Form().Controls()
	ids := make([]string, 0, len(controls))
	for _, ctl := range controls {
		ids = append(ids, ctl.ID)
	}
	return ids
}
