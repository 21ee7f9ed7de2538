// Package tagged parses and formats the tagged text output emitted by the
// p4 command-line tool (`p4 -ztag ...`). Output is a sequence of records,
// one per logical result: each record is a run of field lines of the form
// `... name value`, records are separated by a blank line, and lines
// belonging to a multi-line value continue the previous field. Field order
// within a record is preserved so that a record can be re-encoded
// byte-for-byte for round-trip comparison.
//
// The exact framing (the field-line marker and the continuation prefix)
// varies between p4 tagged modes, so the Decoder exposes the marker as a
// knob rather than hard-coding it.
package tagged

import (
	"fmt"
	"strings"
)

// DefaultMarker is the field-line prefix used by `p4 -ztag`.
const DefaultMarker = "... "

// continuationPrefix is what Format emits in front of the second and later
// lines of a multi-line value. Parse strips exactly one on the way back in.
const continuationPrefix = "\t"

// Field is a single name/value pair within a record. Value may contain
// newlines for multi-line fields such as changelist descriptions.
type Field struct {
	Name  string
	Value string
}

// Record is one decoded block of tagged output: an ordered field mapping.
// The zero value is an empty record ready for use.
type Record struct {
	fields []Field
}

// Add appends a field, keeping insertion order. Duplicate names are allowed;
// p4 emits indexed duplicates (View0, View1, ...) rather than true repeats,
// but nothing here depends on uniqueness.
func (r *Record) Add(name, value string) {
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Set replaces the value of an existing field, or appends it if absent.
func (r *Record) Set(name, value string) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = value
			return
		}
	}
	r.Add(name, value)
}

// Get returns the value of the first field with the given name, or "".
func (r *Record) Get(name string) string {
	v, _ := r.Lookup(name)
	return v
}

// Lookup returns the value of the first field with the given name and
// whether it was present.
func (r *Record) Lookup(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns the fields in insertion order. The slice is shared with
// the record; callers must not modify it.
func (r *Record) Fields() []Field {
	return r.fields
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Equal reports whether two records have the same fields in the same order.
func (r *Record) Equal(other *Record) bool {
	if len(r.fields) != len(other.fields) {
		return false
	}
	for i, f := range r.fields {
		if other.fields[i] != f {
			return false
		}
	}
	return true
}

// Format re-encodes the record as tagged text using the default marker.
// Multi-line values are emitted with a tab-prefixed continuation line per
// embedded newline, which Parse reverses exactly.
func (r *Record) Format() string {
	var b strings.Builder
	for _, f := range r.fields {
		lines := strings.Split(f.Value, "\n")
		b.WriteString(DefaultMarker)
		b.WriteString(f.Name)
		if lines[0] != "" {
			b.WriteString(" ")
			b.WriteString(lines[0])
		}
		b.WriteString("\n")
		for _, line := range lines[1:] {
			b.WriteString(continuationPrefix)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Format encodes a sequence of records as tagged text, records separated by
// a blank line. Parse(Format(recs)) yields records equal to recs.
func Format(recs []*Record) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Format())
	}
	return b.String()
}

// ParseError reports structurally malformed tagged output. It carries the
// 1-based line number and a description of what was wrong; the surrounding
// command context is added by the caller.
type ParseError struct {
	Line    int
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tagged output malformed at line %d: %s", e.Line, e.Context)
}

// Decoder splits tagged text into records.
type Decoder struct {
	// Marker is the field-line prefix. When non-empty, a line starting with
	// it is a field line and any other non-blank line continues the previous
	// field's value. When empty, a field line is any line without leading
	// whitespace (name and value separated by a space) and continuations
	// must be indented.
	Marker string
}

// NewDecoder returns a decoder for the `p4 -ztag` framing.
func NewDecoder() *Decoder {
	return &Decoder{Marker: DefaultMarker}
}

// Parse splits text into records. Empty input (or input that is all blank
// lines) yields an empty slice and no error: "no results" is a normal
// outcome. A trailing record without a closing blank line is terminated at
// end of input.
func (d *Decoder) Parse(text string) ([]*Record, error) {
	var (
		recs []*Record
		cur  *Record
	)
	flush := func() {
		if cur != nil && cur.Len() > 0 {
			recs = append(recs, cur)
		}
		cur = nil
	}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			flush()
			continue
		}

		name, value, isField, err := d.splitFieldLine(i+1, line)
		if err != nil {
			return nil, err
		}
		if isField {
			if cur == nil {
				cur = &Record{}
			}
			cur.Add(name, value)
			continue
		}

		// Continuation of the previous field's value. A whitespace-only line
		// between records is treated as a boundary, not an error; inside a
		// record it carries an empty value line.
		if cur == nil || cur.Len() == 0 {
			if strings.TrimSpace(line) == "" {
				flush()
				continue
			}
			return nil, &ParseError{Line: i + 1, Context: "continuation line before any field"}
		}
		last := &cur.fields[cur.Len()-1]
		last.Value += "\n" + strings.TrimPrefix(line, continuationPrefix)
	}
	flush()
	return recs, nil
}

// splitFieldLine decides whether a non-blank line starts a field and, if so,
// splits it into name and value.
func (d *Decoder) splitFieldLine(lineno int, line string) (name, value string, isField bool, err error) {
	if d.Marker != "" {
		if !strings.HasPrefix(line, d.Marker) {
			return "", "", false, nil
		}
		rest := strings.TrimPrefix(line, d.Marker)
		name, value, _ = strings.Cut(rest, " ")
		if name == "" {
			return "", "", false, &ParseError{Line: lineno, Context: "field line with empty name"}
		}
		return name, value, true, nil
	}

	if line[0] == ' ' || line[0] == '\t' {
		return "", "", false, nil
	}
	name, value, ok := strings.Cut(line, " ")
	if !ok {
		return "", "", false, &ParseError{Line: lineno, Context: fmt.Sprintf("field line %q has no separator", line)}
	}
	return name, value, true, nil
}

// Parse splits text into records using the `p4 -ztag` framing.
func Parse(text string) ([]*Record, error) {
	return NewDecoder().Parse(text)
}
