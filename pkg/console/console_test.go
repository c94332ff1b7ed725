package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
	"github.com/ormasoftchile/fuzzpanel/pkg/panel"
)

// newConsole builds a console over one numeric and one boolean argument and
// records every posted message.
func newConsole(t *testing.T) (*Console, *bytes.Buffer, *[]panel.Message) {
	t.Helper()
	form, err := overrides.DeclareForm([]string{overrides.MaxTests}, []overrides.ArgSpec{
		{Name: "n", Type: overrides.TypeNumber},
		{Name: "flag", Type: overrides.TypeBoolean},
	})
	if err != nil {
		t.Fatal(err)
	}
	var posted []panel.Message
	sender := panel.SenderFunc(func(m panel.Message) error {
		posted = append(posted, m)
		return nil
	})
	var buf bytes.Buffer
	c := New(panel.New(form, panel.Options{}), sender)
	c.SetOutput(&buf)
	return c, &buf, &posted
}

func TestConsoleHelp(t *testing.T) {
	c, buf, _ := newConsole(t)
	c.Exec("help")
	for _, cmd := range []string{"list", "set", "clear", "check", "uncheck", "extract", "start", "release", "options", "help", "quit"} {
		if !strings.Contains(buf.String(), cmd) {
			t.Errorf("help output missing command %q", cmd)
		}
	}
}

func TestConsoleSetAndExtract(t *testing.T) {
	c, buf, _ := newConsole(t)
	c.Exec("set fuzz-maxTests 50")
	c.Exec("set argDef-0-min -3")
	c.Exec("set argDef-0-max 3")
	c.Exec("check argDef-0-numInteger")
	c.Exec("check argDef-1-trueOnly")
	buf.Reset()

	c.Exec("extract")
	out := buf.String()
	for _, want := range []string{`"maxTests": 50`, `"min": -3`, `"numInteger": true`, `"min": true`, `"max": true`} {
		if !strings.Contains(out, want) {
			t.Errorf("extract output missing %s:\n%s", want, out)
		}
	}
}

func TestConsoleStartAndRelease(t *testing.T) {
	c, buf, posted := newConsole(t)
	c.Exec("set argDef-0-min 1")
	c.Exec("set argDef-0-max 2")
	c.Exec("start")

	if len(*posted) != 1 {
		t.Fatalf("posted %d messages, want 1", len(*posted))
	}
	if (*posted)[0].Command != "fuzz.start" {
		t.Errorf("command = %q", (*posted)[0].Command)
	}
	if c.buildPrompt() != "fuzz[running]> " {
		t.Errorf("prompt = %q", c.buildPrompt())
	}

	buf.Reset()
	c.Exec("set argDef-0-min 5")
	if !strings.Contains(buf.String(), "Error:") {
		t.Errorf("editing a disabled control should fail: %s", buf.String())
	}

	c.Exec("start")
	if len(*posted) != 1 {
		t.Error("second start while running must not post")
	}

	c.Exec("release")
	if c.panel.Busy() {
		t.Error("release should end the run")
	}
	if c.buildPrompt() != "fuzz[2 args]> " {
		t.Errorf("prompt = %q", c.buildPrompt())
	}
}

func TestConsoleStartSendFailure(t *testing.T) {
	form, _ := overrides.DeclareForm(nil, nil)
	var buf bytes.Buffer
	c := New(panel.New(form, panel.Options{}), panel.SenderFunc(func(panel.Message) error {
		return errors.New("host gone")
	}))
	c.SetOutput(&buf)

	c.Exec("start")
	if !strings.Contains(buf.String(), "host gone") {
		t.Errorf("expected send error, got %s", buf.String())
	}
	if c.panel.Busy() {
		t.Error("failed send must leave the panel idle")
	}
}

func TestConsoleList(t *testing.T) {
	c, buf, _ := newConsole(t)
	c.Exec("set argDef-0-min 7")
	buf.Reset()
	c.Exec("list")
	out := buf.String()
	for _, want := range []string{"fuzz.start", "argDef-0", `"7"`, "argDef-1-trueFalse", "[x]"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleUsageAndUnknown(t *testing.T) {
	c, buf, _ := newConsole(t)
	c.Exec("set onlyid")
	c.Exec("frobnicate")
	out := buf.String()
	if !strings.Contains(out, "Usage: set <id> <value>") {
		t.Errorf("missing usage: %s", out)
	}
	if !strings.Contains(out, `Unknown command: "frobnicate"`) {
		t.Errorf("missing unknown command: %s", out)
	}
	if c.Exec("") {
		t.Error("blank line must not quit")
	}
	if !c.Exec("quit") {
		t.Error("quit should exit")
	}
}

func TestConsoleOptionsToggle(t *testing.T) {
	c, buf, _ := newConsole(t)
	c.Exec("options")
	if !strings.Contains(buf.String(), `"Fewer options"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
