package overrides

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldError reports a control whose value cannot be used.
type FieldError struct {
	ID     string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.ID, e.Reason, e.Value)
}

// Extraction is the result of reading a control tree.
type Extraction struct {
	Overrides Overrides
	// Touched lists every control consulted, in consultation order. The
	// caller disables them once the payload has been sent.
	Touched []string
}

// Payload is shorthand for x.Overrides.Payload().
func (x *Extraction) Payload() Payload {
	return x.Overrides.Payload()
}

// CountArgs probes argument groups from index 0 and returns the index of
// the first missing one.
func CountArgs(tree ControlTree) int {
	n := 0
	for {
		if _, ok := tree.Lookup(ArgID(n)); !ok {
			return n
		}
		n++
	}
}

// Extract reads the global settings and every argument group present in
// tree. It never modifies the tree, so repeated calls on an unchanged tree
// return identical results.
func Extract(tree ControlTree) (*Extraction, error) {
	return ExtractArgs(tree, CountArgs(tree))
}

// ExtractArgs is Extract with an explicit argument count.
func ExtractArgs(tree ControlTree, n int) (*Extraction, error) {
	x := &extractor{tree: tree}
	x.globals()
	args := make([]ArgOverride, 0, n)
	for i := 0; i < n; i++ {
		if _, ok := tree.Lookup(ArgID(i)); !ok {
			x.fail(ArgID(i), "", "argument group is missing")
			continue
		}
		args = append(args, x.arg(i))
	}
	if len(x.errs) > 0 {
		return nil, errors.Join(x.errs...)
	}
	return &Extraction{
		Overrides: Overrides{Fuzzer: x.fuzzer, Args: args},
		Touched:   x.touched,
	}, nil
}

type extractor struct {
	tree    ControlTree
	fuzzer  FuzzerSettings
	touched []string
	errs    []error
}

func (x *extractor) fail(id, value, reason string) {
	x.errs = append(x.errs, &FieldError{ID: id, Value: value, Reason: reason})
}

// lookup returns the controls for ids, touching them, only if all exist.
func (x *extractor) lookup(ids ...string) ([]Control, bool) {
	out := make([]Control, 0, len(ids))
	for _, id := range ids {
		c, ok := x.tree.Lookup(id)
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}
	x.touched = append(x.touched, ids...)
	return out, true
}

func (x *extractor) globals() {
	for _, name := range GlobalSettings {
		cs, ok := x.lookup(GlobalID(name))
		if !ok || cs[0].Value == nil {
			continue
		}
		v, ok := x.integer(cs[0])
		if !ok {
			continue
		}
		switch name {
		case SuiteTimeout:
			x.fuzzer.SuiteTimeout = &v
		case MaxTests:
			x.fuzzer.MaxTests = &v
		case FnTimeout:
			x.fuzzer.FnTimeout = &v
		}
	}
}

func (x *extractor) arg(i int) ArgOverride {
	var a ArgOverride

	if cs, ok := x.lookup(FacetID(i, FacetMin), FacetID(i, FacetMax)); ok && bothSet(cs) {
		lo, okLo := x.number(cs[0])
		hi, okHi := x.number(cs[1])
		if okLo && okHi {
			a.Range = &NumRange{Min: lo, Max: hi}
		}
	}

	if cs, ok := x.lookup(FacetID(i, FacetNumInteger)); ok {
		v := cs[0].Checked
		a.NumInteger = &v
	}

	if cs, ok := x.lookup(FacetID(i, FacetTrueFalse), FacetID(i, FacetTrueOnly), FacetID(i, FacetFalseOnly)); ok {
		b := BoolRangeOf(cs[1].Checked, cs[2].Checked)
		a.Bool = &b
	}

	if cs, ok := x.lookup(FacetID(i, FacetMinStrLen), FacetID(i, FacetMaxStrLen)); ok && bothSet(cs) {
		lo, okLo := x.integer(cs[0])
		hi, okHi := x.integer(cs[1])
		if okLo && okHi {
			a.StrLen = &LenRange{Min: lo, Max: hi}
		}
	}

	// Dimensions are positional; the list ends at the first dimension
	// without a complete pair.
	for d := 0; ; d++ {
		cs, ok := x.lookup(DimID(i, d, FacetMin), DimID(i, d, FacetMax))
		if !ok || !bothSet(cs) {
			break
		}
		lo, okLo := x.integer(cs[0])
		hi, okHi := x.integer(cs[1])
		if !okLo || !okHi {
			break
		}
		a.DimLength = append(a.DimLength, LenRange{Min: lo, Max: hi})
	}
	return a
}

func bothSet(cs []Control) bool {
	return cs[0].Value != nil && cs[1].Value != nil
}

func (x *extractor) number(c Control) (float64, bool) {
	s := strings.TrimSpace(*c.Value)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		x.fail(c.ID, *c.Value, "not a finite number")
		return 0, false
	}
	return v, true
}

func (x *extractor) integer(c Control) (int, bool) {
	s := strings.TrimSpace(*c.Value)
	v, err := strconv.Atoi(s)
	if err != nil {
		x.fail(c.ID, *c.Value, "not an integer")
		return 0, false
	}
	return v, true
}
