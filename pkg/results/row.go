package results

import (
	"bytes"
	"encoding/json"
)

// Cell is one labelled column of a display row.
type Cell struct {
	Label string
	Text  string
}

// Row is a display row: an ordered label → text mapping. It marshals to a
// JSON object whose keys keep insertion order, which is the column order
// of the grid.
type Row []Cell

// Set adds a column, or replaces the text of an existing label in place.
func (r *Row) Set(label, text string) {
	for i := range *r {
		if (*r)[i].Label == label {
			(*r)[i].Text = text
			return
		}
	}
	*r = append(*r, Cell{Label: label, Text: text})
}

// Get returns the text for label.
func (r Row) Get(label string) (string, bool) {
	for _, c := range r {
		if c.Label == label {
			return c.Text, true
		}
	}
	return "", false
}

// Labels returns the column labels in order.
func (r Row) Labels() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Label
	}
	return out
}

// Map returns the row as an unordered map.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, c := range r {
		m[c.Label] = c.Text
	}
	return m
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// MarshalJSON writes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of strings, keeping key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var row Row
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := tok.(string)
		var text string
		if err := dec.Decode(&text); err != nil {
			return err
		}
		row.Set(label, text)
	}
	*r = row
	return nil
}
