package results

import "testing"

func sampleGrids(t *testing.T) *Grids {
	t.Helper()
	g, err := Classify([]Record{
		{Input: []Arg{{Name: "x", Value: NewValue("1")}}, Passed: true},
		{Input: []Arg{{Name: "x", Value: NewValue("2")}}, Passed: true},
		{Input: []Arg{{Name: "x", Value: NewValue("3")}}, Timeout: true},
		{Input: []Arg{{Name: "x", Value: NewValue("4")}}, Exception: true, ExceptionMessage: "RangeError"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestFilterByCategory(t *testing.T) {
	g, err := Filter(sampleGrids(t), `category == "passed"`)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(g.Passed) != 2 || g.Len() != 2 {
		t.Errorf("got %v, want only the 2 passed rows", g.Counts())
	}
}

func TestFilterByRowText(t *testing.T) {
	g, err := Filter(sampleGrids(t), `row["input: x"] == "3" || (category == "exception" && row["exception"] contains "Range")`)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(g.Timeout) != 1 || len(g.Exception) != 1 || g.Len() != 2 {
		t.Errorf("counts = %v", g.Counts())
	}
}

func TestFilterEmptyKeepsAll(t *testing.T) {
	src := sampleGrids(t)
	g, err := Filter(src, "  ")
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != src.Len() {
		t.Errorf("len = %d, want %d", g.Len(), src.Len())
	}
}

func TestFilterRejectsNonBoolean(t *testing.T) {
	if _, err := Filter(sampleGrids(t), `index + 1`); err == nil {
		t.Error("expected compile error for non-boolean expression")
	}
}
