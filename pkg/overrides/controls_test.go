package overrides

import (
	"strings"
	"testing"
)

func TestDeclareFormFacetsByType(t *testing.T) {
	f, err := DeclareForm([]string{MaxTests}, []ArgSpec{
		{Name: "n", Type: TypeNumber},
		{Name: "b", Type: TypeBoolean},
		{Name: "s", Type: TypeString, Dims: 1},
		{Name: "o", Type: TypeObject},
	})
	if err != nil {
		t.Fatalf("DeclareForm: %v", err)
	}

	want := []string{
		"fuzz.start", "fuzz-maxTests",
		"argDef-0", "argDef-0-min", "argDef-0-max", "argDef-0-numInteger",
		"argDef-1", "argDef-1-trueFalse", "argDef-1-trueOnly", "argDef-1-falseOnly",
		"argDef-2", "argDef-2-minStrLen", "argDef-2-maxStrLen", "argDef-2-array-0-min", "argDef-2-array-0-max",
		"argDef-3",
	}
	var got []string
	for _, c := range f.Controls() {
		got = append(got, c.ID)
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("controls =\n%v\nwant\n%v", got, want)
	}
	if c, _ := f.Lookup("argDef-1-trueFalse"); !c.Checked {
		t.Error("trueFalse should start checked")
	}
	if CountArgs(f) != 4 {
		t.Errorf("CountArgs = %d, want 4", CountArgs(f))
	}
}

func TestDeclareFormRejectsUnknownSetting(t *testing.T) {
	if _, err := DeclareForm([]string{"retries"}, nil); err == nil {
		t.Error("expected error for unknown setting")
	}
}

func TestRadioGroupIsExclusive(t *testing.T) {
	f, err := DeclareForm(nil, []ArgSpec{{Name: "b", Type: TypeBoolean}})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetChecked("argDef-0-falseOnly", true); err != nil {
		t.Fatal(err)
	}
	for id, want := range map[string]bool{"argDef-0-trueFalse": false, "argDef-0-trueOnly": false, "argDef-0-falseOnly": true} {
		if c, _ := f.Lookup(id); c.Checked != want {
			t.Errorf("%s checked = %v, want %v", id, c.Checked, want)
		}
	}
}

func TestFormRejectsEditsToDisabledControls(t *testing.T) {
	f, err := DeclareForm([]string{MaxTests}, nil)
	if err != nil {
		t.Fatal(err)
	}
	f.Disable([]string{"fuzz-maxTests"})
	if err := f.Set("fuzz-maxTests", "5"); err == nil {
		t.Error("expected error editing a disabled control")
	}
	f.Enable([]string{"fuzz-maxTests"})
	if err := f.Set("fuzz-maxTests", "5"); err != nil {
		t.Errorf("Set after Enable: %v", err)
	}
	if err := f.Set("nope", "1"); err == nil {
		t.Error("expected error for unknown control")
	}
}

func TestFormLookupReturnsCopy(t *testing.T) {
	f := NewForm()
	if err := f.Add(Control{ID: "a", Value: str("1")}); err != nil {
		t.Fatal(err)
	}
	c, _ := f.Lookup("a")
	*c.Value = "changed"
	if c2, _ := f.Lookup("a"); *c2.Value != "1" {
		t.Error("Lookup leaked internal state")
	}
	if err := f.Add(Control{ID: "a"}); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestLoadPanel(t *testing.T) {
	src := `
globals: [suiteTimeout, maxTests]
args:
  - name: count
    type: number
    dims: 1
  - name: flag
    type: boolean
controls:
  - id: fuzz-fnTimeout
    kind: number
    value: "25"
values:
  fuzz-maxTests: "500"
  argDef-0-min: "0"
  argDef-0-max: "7"
  argDef-0-array-0-min: "1"
  argDef-0-array-0-max: "2"
checked:
  argDef-0-numInteger: true
  argDef-1-trueOnly: true
`
	f, err := LoadPanel(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadPanel: %v", err)
	}
	x, err := Extract(f)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := `{"fuzzer":{"maxTests":500,"fnTimeout":25},"args":[{"min":0,"max":7,"numInteger":true,"dimLength":[{"min":1,"max":2}]},{"min":true,"max":true}]}`
	if got := payloadJSON(t, x); got != want {
		t.Errorf("payload =\n%s\nwant\n%s", got, want)
	}
}

func TestLoadPanelRejectsUnknownFields(t *testing.T) {
	if _, err := LoadPanel(strings.NewReader("argz: []\n")); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestLoadPanelEmpty(t *testing.T) {
	f, err := LoadPanel(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadPanel: %v", err)
	}
	if f.Len() != 1 {
		t.Errorf("empty panel has %d controls, want only the start button", f.Len())
	}
}
