package results

import "fmt"

// Category is one of the four outcome grids.
type Category string

const (
	Timeout   Category = "timeout"
	Exception Category = "exception"
	BadOutput Category = "badOutput"
	Passed    Category = "passed"
)

// Categories lists the grids in display order.
var Categories = []Category{Timeout, Exception, BadOutput, Passed}

// Display markers for values that were not supplied.
const (
	NoInput         = "(no input)"
	UndefinedOutput = "undefined"
)

// Grids holds the classified rows, one ordered slice per category.
type Grids struct {
	Timeout   []Row `json:"timeout"`
	Exception []Row `json:"exception"`
	BadOutput []Row `json:"badOutput"`
	Passed    []Row `json:"passed"`
}

// Rows returns the rows of category c.
func (g *Grids) Rows(c Category) []Row {
	switch c {
	case Timeout:
		return g.Timeout
	case Exception:
		return g.Exception
	case BadOutput:
		return g.BadOutput
	case Passed:
		return g.Passed
	}
	return nil
}

func (g *Grids) add(c Category, r Row) {
	switch c {
	case Timeout:
		g.Timeout = append(g.Timeout, r)
	case Exception:
		g.Exception = append(g.Exception, r)
	case BadOutput:
		g.BadOutput = append(g.BadOutput, r)
	case Passed:
		g.Passed = append(g.Passed, r)
	}
}

// Len returns the total number of rows across all categories.
func (g *Grids) Len() int {
	n := 0
	for _, c := range Categories {
		n += len(g.Rows(c))
	}
	return n
}

// Counts returns the row count per category.
func (g *Grids) Counts() map[Category]int {
	m := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		m[c] = len(g.Rows(c))
	}
	return m
}

// CategoryOf returns the grid a record belongs to. The first matching rule
// wins: passed, then exception, then timeout, otherwise badOutput.
func CategoryOf(r *Record) Category {
	switch {
	case r.Passed:
		return Passed
	case r.Exception:
		return Exception
	case r.Timeout:
		return Timeout
	default:
		return BadOutput
	}
}

// RenderRow builds the display row of a record for its category.
func RenderRow(r *Record) (Category, Row) {
	var row Row
	for _, in := range r.Input {
		text := NoInput
		if in.Value.Present() {
			text = in.Value.Text()
		}
		row.Set("input: "+in.Name, text)
	}

	cat := CategoryOf(r)
	switch cat {
	case Passed, BadOutput:
		for _, out := range r.Output {
			text := UndefinedOutput
			if out.Value.Present() {
				text = out.Value.Text()
			}
			row.Set("output", text)
		}
	case Exception:
		row.Set("exception", r.ExceptionMessage)
	}
	return cat, row
}

// Classify partitions records into the four grids, preserving input order
// within each grid. Every record lands in exactly one grid.
func Classify(records []Record) (*Grids, error) {
	g := &Grids{}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("result[%d]: %w", i, err)
		}
		cat, row := RenderRow(&records[i])
		g.add(cat, row)
	}
	return g, nil
}
