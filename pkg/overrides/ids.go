package overrides

import "strconv"

// Control id layout shared with the panel page.
const (
	fuzzBase = "fuzz"
	argBase  = "argDef"

	// StartButtonID is the control that triggers extraction.
	StartButtonID = "fuzz.start"
	// StartCommand is the command name posted to the host.
	StartCommand = "fuzz.start"
)

// Global fuzzer settings, in extraction order.
const (
	SuiteTimeout = "suiteTimeout"
	MaxTests     = "maxTests"
	FnTimeout    = "fnTimeout"
)

// GlobalSettings lists the global settings in extraction order.
var GlobalSettings = []string{SuiteTimeout, MaxTests, FnTimeout}

// Argument facet suffixes.
const (
	FacetMin        = "min"
	FacetMax        = "max"
	FacetNumInteger = "numInteger"
	FacetTrueFalse  = "trueFalse"
	FacetTrueOnly   = "trueOnly"
	FacetFalseOnly  = "falseOnly"
	FacetMinStrLen  = "minStrLen"
	FacetMaxStrLen  = "maxStrLen"
)

// GlobalID returns the control id of a global fuzzer setting.
func GlobalID(name string) string { return fuzzBase + "-" + name }

// ArgID returns the id of the control group for argument i.
func ArgID(i int) string { return argBase + "-" + strconv.Itoa(i) }

// FacetID returns the id of a facet control of argument i.
func FacetID(i int, facet string) string { return ArgID(i) + "-" + facet }

// DimID returns the id of the min or max control of dimension d of argument i.
func DimID(i, d int, bound string) string {
	return ArgID(i) + "-array-" + strconv.Itoa(d) + "-" + bound
}
