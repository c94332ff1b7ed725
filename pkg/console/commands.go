package console

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
	"github.com/ormasoftchile/fuzzpanel/pkg/panel"
)

func countArgs(p *panel.Panel) int {
	return overrides.CountArgs(p.Form())
}

// handleList prints every control with its current state.
func (c *Console) handleList() {
	controls := c.panel.Form().Controls()
	width := 0
	for _, ctl := range controls {
		if w := runewidth.StringWidth(ctl.ID); w > width {
			width = w
		}
	}

	for _, ctl := range controls {
		var state string
		switch ctl.Kind {
		case overrides.KindCheckbox, overrides.KindRadio:
			state = "[ ]"
			if ctl.Checked {
				state = "[x]"
			}
		case overrides.KindGroup:
			state = ctl.Label
		case overrides.KindButton:
			state = "(" + ctl.Label + ")"
		default:
			state = "-"
			if ctl.Value != nil {
				state = fmt.Sprintf("%q", *ctl.Value)
			}
		}
		if ctl.Disabled {
			state += " disabled"
		}
		indent := "  "
		if ctl.Kind != overrides.KindGroup && strings.HasPrefix(ctl.ID, "argDef-") {
			indent = "    "
		}
		fmt.Fprintf(c.output, "%s%s  %s\n", indent, runewidth.FillRight(ctl.ID, width), state)
	}
}

// handleSet assigns a value to a control.
func (c *Console) handleSet(parts []string) {
	if len(parts) < 3 {
		fmt.Fprintf(c.output, "Usage: set <id> <value>\n")
		return
	}
	value := strings.Join(parts[2:], " ")
	if err := c.panel.Form().Set(parts[1], value); err != nil {
		fmt.Fprintf(c.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.output, "  %s = %q\n", parts[1], value)
}

// handleClear unsets a control's value.
func (c *Console) handleClear(parts []string) {
	if len(parts) != 2 {
		fmt.Fprintf(c.output, "Usage: clear <id>\n")
		return
	}
	if err := c.panel.Form().Clear(parts[1]); err != nil {
		fmt.Fprintf(c.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.output, "  %s cleared\n", parts[1])
}

// handleCheck checks or unchecks a checkbox or radio button.
func (c *Console) handleCheck(parts []string, checked bool) {
	if len(parts) != 2 {
		fmt.Fprintf(c.output, "Usage: %s <id>\n", parts[0])
		return
	}
	if err := c.panel.Form().SetChecked(parts[1], checked); err != nil {
		fmt.Fprintf(c.output, "Error: %v\n", err)
		return
	}
	mark := "[ ]"
	if checked {
		mark = "[x]"
	}
	fmt.Fprintf(c.output, "  %s %s\n", mark, parts[1])
}

// handleExtract previews the payload without starting a run.
func (c *Console) handleExtract() {
	x, err := overrides.Extract(c.panel.Form())
	if err == nil {
		err = x.Overrides.Validate()
	}
	if err != nil {
		fmt.Fprintf(c.output, "Error: %v\n", err)
		return
	}
	data, err := json.MarshalIndent(x.Payload(), "", "  ")
	if err != nil {
		fmt.Fprintf(c.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.output, "%s\n", data)
	fmt.Fprintf(c.output, "%d controls consulted\n", len(x.Touched))
}

// handleStart posts fuzz.start with the current overrides.
func (c *Console) handleStart() {
	res, err := c.panel.Start(c.sender)
	if err != nil {
		fmt.Fprintf(c.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.output, "  ✓ posted %s (%d args)\n", res.Message.Command, len(res.Payload.Args))
	fmt.Fprintf(c.output, "  %d controls disabled until 'release'\n", len(res.Disabled))
}

// handleRelease marks the run finished and re-enables the controls.
func (c *Console) handleRelease() {
	if !c.panel.Busy() {
		fmt.Fprintf(c.output, "No run in progress.\n")
		return
	}
	ids := c.panel.Release()
	fmt.Fprintf(c.output, "  %d controls enabled\n", len(ids))
}

// handleOptions toggles the options section.
func (c *Console) handleOptions() {
	visible, label := c.panel.ToggleOptions()
	state := "hidden"
	if visible {
		state = "shown"
	}
	fmt.Fprintf(c.output, "  options %s, button now reads %q\n", state, label)
}

// handleHelp displays available commands.
func (c *Console) handleHelp() {
	fmt.Fprintln(c.output, "Available commands:")
	fmt.Fprintln(c.output, "  list (l)         Show all controls and their values")
	fmt.Fprintln(c.output, "  set              Set a value: set <id> <value>")
	fmt.Fprintln(c.output, "  clear            Unset a value: clear <id>")
	fmt.Fprintln(c.output, "  check            Check a checkbox or radio: check <id>")
	fmt.Fprintln(c.output, "  uncheck          Uncheck a checkbox or radio: uncheck <id>")
	fmt.Fprintln(c.output, "  extract (x)      Preview the override payload")
	fmt.Fprintln(c.output, "  start (s)        Post fuzz.start with the current overrides")
	fmt.Fprintln(c.output, "  release          Re-enable controls after a run")
	fmt.Fprintln(c.output, "  options (o)      Toggle the options section")
	fmt.Fprintln(c.output, "  help (?)         Show this help")
	fmt.Fprintln(c.output, "  quit (q)         Exit console")
}
