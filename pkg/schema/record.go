// Package schema normalizes heterogeneous listing records for display.
// Field names differ between datasets and crawler generations; every
// logical attribute therefore probes an ordered list of candidate
// paths and the first present, non-empty value wins. Adapters never
// fail: anything missing or malformed degrades to a placeholder.
package schema

import "strings"

// Record is one raw listing row as decoded from the backend. It is
// read-only; adapters only ever look values up.
type Record map[string]any

// Probe walks candidate paths (dot-separated, so "extra.usage" reaches
// into the nested extra bag) and returns the first present value that
// is not nil and not the empty string.
func (r Record) Probe(paths ...string) (any, bool) {
	for _, path := range paths {
		v, ok := r.lookup(path)
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// ProbeString is Probe with a string conversion; missing values yield
// the empty string.
func (r Record) ProbeString(paths ...string) string {
	v, ok := r.Probe(paths...)
	if !ok {
		return ""
	}
	return Stringify(v)
}

func (r Record) lookup(path string) (any, bool) {
	if !strings.Contains(path, ".") {
		v, ok := r[path]
		return v, ok
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if rec, isRec := cur.(Record); isRec {
				m = map[string]any(rec)
			} else {
				return nil, false
			}
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Id returns the record identity, probing the usual id aliases.
func (r Record) Id() string {
	return r.ProbeString("id", "doc_id", "uuid", "case_number")
}

// Attr declares one displayable attribute: its label and a render
// function over the whole record. Most renderers are built from the
// probe helpers in this package, so the candidate paths stay data.
type Attr struct {
	Label  string
	Render func(Record) string
}

// Row is one rendered label/value pair.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is the per-transaction detail block used by aggregate popups.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type Action struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Popup is the normalized display structure all adapters produce.
type Popup struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Rows     []Row    `json:"rows"`
	Table    *Table   `json:"table,omitempty"`
	Actions  []Action `json:"actions,omitempty"`
}

// renderRows evaluates a declarative attribute list against a record.
func renderRows(r Record, attrs []Attr) []Row {
	rows := make([]Row, len(attrs))
	for i, a := range attrs {
		rows[i] = Row{Label: a.Label, Value: a.Render(r)}
	}
	return rows
}

// text returns a renderer that probes paths and stringifies the first
// hit, falling back to the given placeholder.
func text(fallback string, paths ...string) func(Record) string {
	return func(r Record) string {
		v, ok := r.Probe(paths...)
		if !ok {
			return fallback
		}
		return Stringify(v)
	}
}

func money(paths ...string) func(Record) string {
	return func(r Record) string {
		v, _ := r.Probe(paths...)
		return Money(v)
	}
}

// floorUnit truncates the probed number and appends a unit suffix,
// rendering the empty string when nothing usable is found.
func floorUnit(unit string, paths ...string) func(Record) string {
	return func(r Record) string {
		v, ok := r.Probe(paths...)
		if !ok {
			return ""
		}
		n, ok := Num(v)
		if !ok {
			return ""
		}
		return Stringify(float64(int64(n))) + unit
	}
}
