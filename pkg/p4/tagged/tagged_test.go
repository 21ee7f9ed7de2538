package tagged

import (
	"errors"
	"strings"
	"testing"
)

// rec builds a record from name/value pairs. Fails the test on odd input.
func rec(t *testing.T, pairs ...string) *Record {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("rec needs name/value pairs, got %d items", len(pairs))
	}
	r := &Record{}
	for i := 0; i < len(pairs); i += 2 {
		r.Add(pairs[i], pairs[i+1])
	}
	return r
}

func TestParseBlocks(t *testing.T) {
	input := "... change 42\n... user alice\n... client ws\n" +
		"\n" +
		"... change 41\n... user bob\n" +
		"\n" +
		"... change 40\n"

	recs, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	want := rec(t, "change", "42", "user", "alice", "client", "ws")
	if !recs[0].Equal(want) {
		t.Errorf("first record = %+v, want %+v", recs[0].Fields(), want.Fields())
	}
	if recs[2].Get("change") != "40" {
		t.Errorf("third record change = %q, want %q", recs[2].Get("change"), "40")
	}
}

func TestParsePreservesFieldOrder(t *testing.T) {
	input := "... zebra 1\n... alpha 2\n... middle 3\n"
	recs, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	var names []string
	for _, f := range recs[0].Fields() {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "zebra,alpha,middle" {
		t.Errorf("field order = %s, want zebra,alpha,middle", got)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n", "\n\n\n", "   \n"} {
		recs, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", input, err)
		}
		if len(recs) != 0 {
			t.Errorf("Parse(%q) = %d records, want 0", input, len(recs))
		}
	}
}

func TestParseMultiLineValue(t *testing.T) {
	input := "... change 42\n... desc First line\n\tsecond line\n\tthird line\n"
	recs, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	want := "First line\nsecond line\nthird line"
	if got := recs[0].Get("desc"); got != want {
		t.Errorf("desc = %q, want %q", got, want)
	}
}

func TestParseTrailingRecordWithoutBlankLine(t *testing.T) {
	recs, err := Parse("... change 42")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 || recs[0].Get("change") != "42" {
		t.Fatalf("trailing record not terminated at EOF: %+v", recs)
	}
}

func TestParseContinuationBeforeFieldIsError(t *testing.T) {
	_, err := Parse("stray continuation\n... change 42\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Line != 1 {
		t.Errorf("ParseError.Line = %d, want 1", perr.Line)
	}
}

func TestParseCRLF(t *testing.T) {
	recs, err := Parse("... change 42\r\n\r\n... change 41\r\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Get("change") != "42" {
		t.Errorf("change = %q, want 42 (CR not stripped?)", recs[0].Get("change"))
	}
}

func TestParseValuelessField(t *testing.T) {
	recs, err := Parse("... isMapped\n... depotFile //depot/a\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, ok := recs[0].Lookup("isMapped")
	if !ok || v != "" {
		t.Errorf("isMapped = (%q, %v), want present with empty value", v, ok)
	}
}

func TestRoundTrip(t *testing.T) {
	recs := []*Record{
		rec(t, "change", "42", "user", "alice", "desc", "line one\nline two\n\nafter blank"),
		rec(t, "depotFile", "//depot/a", "isMapped", ""),
		rec(t, "dir", "//depot/sub"),
	}
	reparsed, err := Parse(Format(recs))
	if err != nil {
		t.Fatalf("Parse(Format(...)): %v", err)
	}
	if len(reparsed) != len(recs) {
		t.Fatalf("round trip produced %d records, want %d", len(reparsed), len(recs))
	}
	for i := range recs {
		if !reparsed[i].Equal(recs[i]) {
			t.Errorf("record %d round trip mismatch:\n got  %+v\n want %+v", i, reparsed[i].Fields(), recs[i].Fields())
		}
	}
}

func TestNoMarkerGrammar(t *testing.T) {
	d := &Decoder{}

	recs, err := d.Parse("change 42\nuser alice\n\ndesc multi\n line two\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1].Get("desc") != "multi\n line two" {
		t.Errorf("desc = %q", recs[1].Get("desc"))
	}

	_, err = d.Parse("noseparator\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for field line without separator, got %v", err)
	}
}

func TestRecordSetAndLookup(t *testing.T) {
	r := rec(t, "a", "1", "b", "2")
	r.Set("a", "changed")
	r.Set("c", "3")
	if r.Get("a") != "changed" {
		t.Errorf("Set did not replace existing field")
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Errorf("Lookup of missing field reported present")
	}
}
