package p4

import "testing"

func TestParseFileTypeRoundTrip(t *testing.T) {
	for _, s := range []string{
		"text",
		"binary",
		"binary+l",
		"text+xC",
		"binary+S16",
		"symlink",
		"utf16+w",
	} {
		ft, err := ParseFileType(s)
		if err != nil {
			t.Errorf("ParseFileType(%q): %v", s, err)
			continue
		}
		if got := ft.String(); got != s {
			t.Errorf("ParseFileType(%q).String() = %q", s, got)
		}
	}
}

func TestParseFileTypeFields(t *testing.T) {
	ft, err := ParseFileType("binary+lS16")
	if err != nil {
		t.Fatalf("ParseFileType: %v", err)
	}
	if ft.Base != TypeBinary {
		t.Errorf("Base = %q", ft.Base)
	}
	if ft.Modifiers == nil || !ft.Modifiers.Exclusive || ft.Modifiers.StoredRevisions != 16 {
		t.Errorf("Modifiers = %+v", ft.Modifiers)
	}
	if ft.Modifiers.HeadOnly {
		t.Error("+S16 must not also set HeadOnly")
	}
}

func TestParseFileTypeHeadOnly(t *testing.T) {
	ft, err := ParseFileType("text+S")
	if err != nil {
		t.Fatalf("ParseFileType: %v", err)
	}
	if !ft.Modifiers.HeadOnly || ft.Modifiers.StoredRevisions != 0 {
		t.Errorf("Modifiers = %+v", ft.Modifiers)
	}
}

func TestParseFileTypeUnknownModifier(t *testing.T) {
	if _, err := ParseFileType("text+q"); err == nil {
		t.Error("expected error for unknown modifier")
	}
}

func TestParseFileTypeUnknownBasePassesThrough(t *testing.T) {
	// The server may grow new base types; they are carried, not rejected.
	ft, err := ParseFileType("apple+x")
	if err != nil {
		t.Fatalf("ParseFileType: %v", err)
	}
	if ft.Base != "apple" || !ft.Modifiers.Executable {
		t.Errorf("ft = %+v", ft)
	}
}

func TestFileTypeStringBareBase(t *testing.T) {
	ft := FileType{Base: TypeText}
	if got := ft.String(); got != "text" {
		t.Errorf("String() = %q", got)
	}
}
