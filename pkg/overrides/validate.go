package overrides

import (
	"errors"
	"fmt"
)

// Validate checks the overrides for values the engine cannot use: inverted
// ranges, negative lengths and non-positive global limits. All problems are
// returned joined.
func (o *Overrides) Validate() error {
	var errs []error
	add := func(id, reason string) {
		errs = append(errs, &FieldError{ID: id, Reason: reason})
	}

	for _, g := range []struct {
		name string
		v    *int
	}{
		{SuiteTimeout, o.Fuzzer.SuiteTimeout},
		{MaxTests, o.Fuzzer.MaxTests},
		{FnTimeout, o.Fuzzer.FnTimeout},
	} {
		if g.v != nil && *g.v <= 0 {
			add(GlobalID(g.name), fmt.Sprintf("must be positive, got %d", *g.v))
		}
	}

	for i, a := range o.Args {
		if a.Range != nil && a.Range.Min > a.Range.Max {
			add(FacetID(i, FacetMin), fmt.Sprintf("min %g is greater than max %g", a.Range.Min, a.Range.Max))
		}
		if a.StrLen != nil {
			if msg := checkLen(*a.StrLen); msg != "" {
				add(FacetID(i, FacetMinStrLen), msg)
			}
		}
		for d, r := range a.DimLength {
			if msg := checkLen(r); msg != "" {
				add(DimID(i, d, FacetMin), msg)
			}
		}
	}
	return errors.Join(errs...)
}

func checkLen(r LenRange) string {
	switch {
	case r.Min < 0:
		return fmt.Sprintf("length must not be negative, got %d", r.Min)
	case r.Min > r.Max:
		return fmt.Sprintf("min length %d is greater than max length %d", r.Min, r.Max)
	}
	return ""
}
