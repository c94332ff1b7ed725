package overrides

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Kind is the widget type of a control.
type Kind string

const (
	KindGroup    Kind = "group"
	KindNumber   Kind = "number"
	KindCheckbox Kind = "checkbox"
	KindRadio    Kind = "radio"
	KindButton   Kind = "button"
)

// Control is a single labelled input of the panel. Value is the control's
// current value attribute; nil means the attribute is not set.
type Control struct {
	ID       string  `yaml:"id"                 json:"id"`
	Kind     Kind    `yaml:"kind,omitempty"     json:"kind,omitempty"`
	Label    string  `yaml:"label,omitempty"    json:"label,omitempty"`
	Group    string  `yaml:"group,omitempty"    json:"group,omitempty"`
	Value    *string `yaml:"value,omitempty"    json:"value,omitempty"`
	Checked  bool    `yaml:"checked,omitempty"  json:"checked,omitempty"`
	Disabled bool    `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// ControlTree resolves controls by id. Extraction only reads through it.
type ControlTree interface {
	Lookup(id string) (Control, bool)
}

// Form is a mutable set of controls in declaration order. It is the
// ControlTree the panel, console and CLI extract from.
type Form struct {
	order    []string
	controls map[string]*Control
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{controls: make(map[string]*Control)}
}

// Add appends a control. Ids must be unique.
func (f *Form) Add(c Control) error {
	if c.ID == "" {
		return fmt.Errorf("control id is empty")
	}
	if _, dup := f.controls[c.ID]; dup {
		return fmt.Errorf("duplicate control id %q", c.ID)
	}
	cp := c
	if c.Value != nil {
		v := *c.Value
		cp.Value = &v
	}
	f.controls[c.ID] = &cp
	f.order = append(f.order, c.ID)
	return nil
}

// Lookup implements ControlTree. The returned control is a copy.
func (f *Form) Lookup(id string) (Control, bool) {
	c, ok := f.controls[id]
	if !ok {
		return Control{}, false
	}
	return *c, true
}

// Controls returns copies of all controls in declaration order.
func (f *Form) Controls() []Control {
	out := make([]Control, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.controls[id])
	}
	return out
}

// Len returns the number of controls.
func (f *Form) Len() int { return len(f.order) }

// Set changes the current value of a control.
func (f *Form) Set(id, value string) error {
	c, err := f.editable(id)
	if err != nil {
		return err
	}
	c.Value = &value
	return nil
}

// Clear removes the current value of a control.
func (f *Form) Clear(id string) error {
	c, err := f.editable(id)
	if err != nil {
		return err
	}
	c.Value = nil
	return nil
}

// SetChecked checks or unchecks a control. Checking a radio control
// unchecks the other members of its group.
func (f *Form) SetChecked(id string, checked bool) error {
	c, err := f.editable(id)
	if err != nil {
		return err
	}
	if checked && c.Kind == KindRadio && c.Group != "" {
		for _, other := range f.controls {
			if other.Group == c.Group && other.Kind == KindRadio {
				other.Checked = false
			}
		}
	}
	c.Checked = checked
	return nil
}

// Disable marks the given controls disabled. Unknown ids are ignored.
func (f *Form) Disable(ids []string) {
	f.setDisabled(ids, true)
}

// Enable clears the disabled flag of the given controls.
func (f *Form) Enable(ids []string) {
	f.setDisabled(ids, false)
}

func (f *Form) setDisabled(ids []string, disabled bool) {
	for _, id := range ids {
		if c, ok := f.controls[id]; ok {
			c.Disabled = disabled
		}
	}
}

func (f *Form) editable(id string) (*Control, error) {
	c, ok := f.controls[id]
	if !ok {
		return nil, fmt.Errorf("unknown control %q", id)
	}
	if c.Disabled {
		return nil, fmt.Errorf("control %q is disabled", id)
	}
	return c, nil
}

// ArgType is the runtime type of a declared argument.
type ArgType string

const (
	TypeNumber  ArgType = "number"
	TypeString  ArgType = "string"
	TypeBoolean ArgType = "boolean"
	TypeObject  ArgType = "object"
)

// ArgSpec declares one function argument. The facets an argument gets are
// decided here, once, from its type and dimensions.
type ArgSpec struct {
	Name     string  `yaml:"name"               json:"name"`
	Type     ArgType `yaml:"type"               json:"type"`
	Dims     int     `yaml:"dims,omitempty"     json:"dims,omitempty"`
	Optional bool    `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Facets returns the facet suffixes rendered for the argument, excluding
// array dimensions.
func (a ArgSpec) Facets() []string {
	switch a.Type {
	case TypeNumber:
		return []string{FacetMin, FacetMax, FacetNumInteger}
	case TypeBoolean:
		return []string{FacetTrueFalse, FacetTrueOnly, FacetFalseOnly}
	case TypeString:
		return []string{FacetMinStrLen, FacetMaxStrLen}
	}
	return nil
}

// DeclareForm builds the controls for the start button, the given global
// settings and the declared arguments. Values start unset.
func DeclareForm(globals []string, args []ArgSpec) (*Form, error) {
	f := NewForm()
	if err := f.Add(Control{ID: StartButtonID, Kind: KindButton, Label: "Fuzz"}); err != nil {
		return nil, err
	}
	for _, g := range globals {
		if !slices.Contains(GlobalSettings, g) {
			return nil, fmt.Errorf("unknown fuzzer setting %q", g)
		}
		if err := f.Add(Control{ID: GlobalID(g), Kind: KindNumber, Label: g}); err != nil {
			return nil, err
		}
	}
	for i, a := range args {
		if a.Dims < 0 {
			return nil, fmt.Errorf("argument %q: dims must not be negative", a.Name)
		}
		if err := f.Add(Control{ID: ArgID(i), Kind: KindGroup, Label: a.Name}); err != nil {
			return nil, err
		}
		boolGroup := FacetID(i, "bool")
		for _, facet := range a.Facets() {
			c := Control{ID: FacetID(i, facet), Kind: KindNumber, Label: facet}
			switch facet {
			case FacetNumInteger:
				c.Kind = KindCheckbox
			case FacetTrueFalse, FacetTrueOnly, FacetFalseOnly:
				c.Kind = KindRadio
				c.Group = boolGroup
				c.Checked = facet == FacetTrueFalse
			}
			if err := f.Add(c); err != nil {
				return nil, err
			}
		}
		for d := 0; d < a.Dims; d++ {
			for _, bound := range []string{FacetMin, FacetMax} {
				c := Control{ID: DimID(i, d, bound), Kind: KindNumber, Label: fmt.Sprintf("dim %d %s", d, bound)}
				if err := f.Add(c); err != nil {
					return nil, err
				}
			}
		}
	}
	return f, nil
}

// PanelFile is the YAML description of a panel used by the CLI, the console
// and tests: declared arguments, extra raw controls and current values.
type PanelFile struct {
	Globals  []string          `yaml:"globals,omitempty"`
	Args     []ArgSpec         `yaml:"args,omitempty"`
	Controls []Control         `yaml:"controls,omitempty"`
	Values   map[string]string `yaml:"values,omitempty"`
	Checked  map[string]bool   `yaml:"checked,omitempty"`
}

// Build materialises the form described by the file.
func (p *PanelFile) Build() (*Form, error) {
	f, err := DeclareForm(p.Globals, p.Args)
	if err != nil {
		return nil, err
	}
	for _, c := range p.Controls {
		if err := f.Add(c); err != nil {
			return nil, err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(p.Values)) {
		if err := f.Set(id, p.Values[id]); err != nil {
			return nil, err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(p.Checked)) {
		if err := f.SetChecked(id, p.Checked[id]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// LoadPanelFile reads and builds a panel file.
func LoadPanelFile(path string) (*Form, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panel: %w", err)
	}
	defer fh.Close()
	return LoadPanel(fh)
}

// LoadPanel parses a panel file with strict unknown-field rejection.
func LoadPanel(r io.Reader) (*Form, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p PanelFile
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode panel: %w", err)
	}
	f, err := p.Build()
	if err != nil {
		return nil, fmt.Errorf("build panel: %w", err)
	}
	return f, nil
}
