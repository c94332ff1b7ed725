package overrides

// Overrides is the internal form of the user's fuzzer option overrides.
type Overrides struct {
	Fuzzer FuzzerSettings
	Args   []ArgOverride
}

// FuzzerSettings are the global settings. Nil means "use the engine default".
type FuzzerSettings struct {
	SuiteTimeout *int `json:"suiteTimeout,omitempty" yaml:"suiteTimeout,omitempty"`
	MaxTests     *int `json:"maxTests,omitempty"     yaml:"maxTests,omitempty"`
	FnTimeout    *int `json:"fnTimeout,omitempty"    yaml:"fnTimeout,omitempty"`
}

// ArgOverride holds the facets configured for one argument. Every facet is
// optional; only the facets the argument's type renders can be set.
type ArgOverride struct {
	Range      *NumRange
	NumInteger *bool
	Bool       *BoolRange
	StrLen     *LenRange
	DimLength  []LenRange
}

// NumRange is an inclusive numeric range.
type NumRange struct {
	Min float64
	Max float64
}

// LenRange is an inclusive length range.
type LenRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// BoolRange is the boolean domain of an argument. {false,true} is
// unrestricted, {true,true} true only, {false,false} false only.
type BoolRange struct {
	Min bool
	Max bool
}

// BoolRangeOf collapses the true-only / false-only controls.
func BoolRangeOf(trueOnly, falseOnly bool) BoolRange {
	return BoolRange{Min: trueOnly, Max: !falseOnly}
}

// Payload is the wire shape consumed by the fuzzing engine.
type Payload struct {
	Fuzzer FuzzerSettings `json:"fuzzer"`
	Args   []WireArg      `json:"args"`
}

// WireArg is the wire shape of one argument override. Min and Max hold
// either numbers or, for boolean arguments, booleans.
type WireArg struct {
	Min        any        `json:"min,omitempty"        jsonschema:"oneof_type=number;boolean"`
	Max        any        `json:"max,omitempty"        jsonschema:"oneof_type=number;boolean"`
	NumInteger *bool      `json:"numInteger,omitempty"`
	MinStrLen  *int       `json:"minStrLen,omitempty"`
	MaxStrLen  *int       `json:"maxStrLen,omitempty"`
	DimLength  []LenRange `json:"dimLength,omitempty"`
}

// Payload converts the overrides to their wire shape. This is the only
// place where a boolean domain is written into the min/max fields.
func (o *Overrides) Payload() Payload {
	p := Payload{Fuzzer: o.Fuzzer, Args: make([]WireArg, 0, len(o.Args))}
	for _, a := range o.Args {
		var w WireArg
		if a.Range != nil {
			w.Min, w.Max = a.Range.Min, a.Range.Max
		}
		w.NumInteger = a.NumInteger
		if a.Bool != nil {
			w.Min, w.Max = a.Bool.Min, a.Bool.Max
		}
		if a.StrLen != nil {
			lo, hi := a.StrLen.Min, a.StrLen.Max
			w.MinStrLen, w.MaxStrLen = &lo, &hi
		}
		if len(a.DimLength) > 0 {
			w.DimLength = append([]LenRange(nil), a.DimLength...)
		}
		p.Args = append(p.Args, w)
	}
	return p
}
