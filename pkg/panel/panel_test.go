package panel

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ormasoftchile/fuzzpanel/pkg/entity"
	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
	"github.com/ormasoftchile/fuzzpanel/pkg/results"
)

const twoResults = `{"results":[
	{"input":[{"name":"x","value":"a<b"}],"output":[{"value":10}],"passed":true},
	{"input":[{"name":"x","value":"c"}],"output":[],"passed":false,"timeout":true}
]}`

const onePassed = `{"results":[{"input":[{"name":"x","value":1}],"output":[{"value":2}],"passed":true}]}`

func newForm(t *testing.T) *overrides.Form {
	t.Helper()
	f, err := overrides.DeclareForm([]string{overrides.MaxTests}, []overrides.ArgSpec{
		{Name: "n", Type: overrides.TypeNumber},
	})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestLoadUnescapesAndBinds(t *testing.T) {
	p := New(nil, Options{})
	res, err := p.Load(entity.Escape(twoResults), entity.Escape(`{"tab":"passed","note":"it's"}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Bound) != 2 {
		t.Errorf("bound = %v, want timeout and passed", res.Bound)
	}
	rows := p.Grid(results.Passed)
	if len(rows) != 1 {
		t.Fatalf("passed rows = %d", len(rows))
	}
	if v, _ := rows[0].Get("input: x"); v != `"a<b"` {
		t.Errorf("input text = %q", v)
	}
	if string(p.State()) != `{"tab":"passed","note":"it's"}` {
		t.Errorf("state = %s", p.State())
	}
}

func TestLoadKeepsStaleGridsByDefault(t *testing.T) {
	p := New(nil, Options{})
	if _, err := p.Load(twoResults, "{}"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Load(onePassed, "{}"); err != nil {
		t.Fatal(err)
	}
	if n := len(p.Grid(results.Timeout)); n != 1 {
		t.Errorf("timeout rows = %d, want the previous row kept", n)
	}
	if v, _ := p.Grid(results.Passed)[0].Get("input: x"); v != "1" {
		t.Errorf("passed grid not replaced: %q", v)
	}
}

func TestLoadClearsStaleGridsWhenConfigured(t *testing.T) {
	p := New(nil, Options{ClearStaleGrids: true})
	if _, err := p.Load(twoResults, "{}"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Load(onePassed, "{}"); err != nil {
		t.Fatal(err)
	}
	if n := len(p.Grid(results.Timeout)); n != 0 {
		t.Errorf("timeout rows = %d, want cleared", n)
	}
}

func TestLoadEmptyObjectBindsNothing(t *testing.T) {
	p := New(nil, Options{})
	res, err := p.Load("{}", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Bound) != 0 || p.Grids().Len() != 0 {
		t.Errorf("bound = %v", res.Bound)
	}
	if p.State() != nil {
		t.Errorf("state = %s, want nil", p.State())
	}
}

func TestLoadAcceptsEmptyExceptionMessage(t *testing.T) {
	p := New(nil, Options{})
	res, err := p.Load(`{"results":[{"input":[],"output":[],"passed":false,"exception":true,"exceptionMessage":""}]}`, "{}")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Bound) != 1 || res.Bound[0] != results.Exception {
		t.Errorf("bound = %v, want [exception]", res.Bound)
	}
}

func TestLoadFailuresAreFatal(t *testing.T) {
	cases := map[string][2]string{
		"bad results json": {`{"results":`, "{}"},
		"missing passed":   {`{"results":[{"input":[],"output":[]}]}`, "{}"},
		"two outputs":      {`{"results":[{"input":[],"output":[{},{}],"passed":false}]}`, "{}"},
		"bad state":        {onePassed, "{nope"},
		"empty results":    {"  ", "{}"},
	}
	for name, in := range cases {
		p := New(nil, Options{})
		if _, err := p.Load(in[0], in[1]); err == nil {
			t.Errorf("%s: expected error", name)
		}
		if p.Grids().Len() != 0 {
			t.Errorf("%s: rows bound despite failure", name)
		}
	}
}

func TestStartPostsOnceAndDisables(t *testing.T) {
	f := newForm(t)
	_ = f.Set("fuzz-maxTests", "100")
	_ = f.Set("argDef-0-min", "1")
	_ = f.Set("argDef-0-max", "2")
	p := New(f, Options{})

	var sent []Message
	res, err := p.Start(SenderFunc(func(m Message) error {
		for _, id := range []string{"fuzz.start", "fuzz-maxTests", "argDef-0-min"} {
			if c, _ := f.Lookup(id); !c.Disabled {
				t.Errorf("%s not disabled before post", id)
			}
		}
		sent = append(sent, m)
		return nil
	}))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(sent) != 1 || sent[0].Command != "fuzz.start" {
		t.Fatalf("sent = %+v", sent)
	}
	want := `{"fuzzer":{"maxTests":100},"args":[{"min":1,"max":2,"numInteger":false}]}`
	if sent[0].JSON != want {
		t.Errorf("payload = %s, want %s", sent[0].JSON, want)
	}
	if res.Disabled[0] != "fuzz.start" || len(res.Disabled) != 5 {
		t.Errorf("disabled = %v", res.Disabled)
	}

	if _, err := p.Start(SenderFunc(func(Message) error { return nil })); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start err = %v, want ErrBusy", err)
	}

	enabled := p.Release()
	if len(enabled) != 5 || p.Busy() {
		t.Errorf("release enabled %v busy=%v", enabled, p.Busy())
	}
	if c, _ := f.Lookup("argDef-0-max"); c.Disabled {
		t.Error("control still disabled after release")
	}
}

func TestStartFailureDoesNotDisable(t *testing.T) {
	f := newForm(t)
	_ = f.Set("argDef-0-min", "abc")
	_ = f.Set("argDef-0-max", "2")
	p := New(f, Options{})

	posted := false
	_, err := p.Start(SenderFunc(func(Message) error { posted = true; return nil }))
	if err == nil {
		t.Fatal("expected extraction error")
	}
	if !strings.Contains(err.Error(), "argDef-0-min") {
		t.Errorf("error %q does not name the control", err)
	}
	if posted {
		t.Error("message posted despite failure")
	}
	for _, c := range f.Controls() {
		if c.Disabled {
			t.Errorf("%s disabled after failed start", c.ID)
		}
	}
	if p.Busy() {
		t.Error("panel busy after failed start")
	}
}

func TestStartRejectsInvertedRange(t *testing.T) {
	f := newForm(t)
	_ = f.Set("argDef-0-min", "9")
	_ = f.Set("argDef-0-max", "2")
	p := New(f, Options{})
	if _, err := p.Start(SenderFunc(func(Message) error { return nil })); err == nil {
		t.Error("expected validation error")
	}
}

func TestStartSendFailureReenables(t *testing.T) {
	f := newForm(t)
	p := New(f, Options{})
	_, err := p.Start(SenderFunc(func(Message) error { return errors.New("pipe closed") }))
	if err == nil || !strings.Contains(err.Error(), "pipe closed") {
		t.Fatalf("err = %v", err)
	}
	if c, _ := f.Lookup("fuzz.start"); c.Disabled {
		t.Error("start button left disabled")
	}
	if p.Busy() {
		t.Error("panel busy after failed post")
	}
}

func TestToggleOptions(t *testing.T) {
	p := New(nil, Options{})
	if p.OptionsLabel() != MoreOptionsLabel {
		t.Errorf("initial label = %q", p.OptionsLabel())
	}
	visible, label := p.ToggleOptions()
	if !visible || label != FewerOptionsLabel {
		t.Errorf("toggle = %v %q", visible, label)
	}
	visible, label = p.ToggleOptions()
	if visible || label != MoreOptionsLabel {
		t.Errorf("toggle back = %v %q", visible, label)
	}
}

func TestGridsMarshalAsDisplayRows(t *testing.T) {
	p := New(nil, Options{})
	if _, err := p.Load(onePassed, ""); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(p.Grids())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"passed":[{"input: x":"1","output":"2"}]`) {
		t.Errorf("grids = %s", data)
	}
}
