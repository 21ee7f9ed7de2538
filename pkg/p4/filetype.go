package p4

import (
	"fmt"
	"strings"
)

// Action is what happened to a file at a given revision. Values the server
// sends that are not listed here pass through untouched; an unknown action
// is never a decode failure.
type Action string

const (
	ActionAdd        Action = "add"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionBranch     Action = "branch"
	ActionMoveAdd    Action = "move/add"
	ActionMoveDelete Action = "move/delete"
	ActionIntegrate  Action = "integrate"
	ActionImport     Action = "import"
	ActionPurge      Action = "purge"
	ActionArchive    Action = "archive"
)

// BaseFileType is the p4 base file type (text, binary, symlink, ...).
// Unknown values pass through untouched.
type BaseFileType string

const (
	TypeText    BaseFileType = "text"
	TypeBinary  BaseFileType = "binary"
	TypeSymlink BaseFileType = "symlink"
	TypeUnicode BaseFileType = "unicode"
	TypeUTF8    BaseFileType = "utf8"
	TypeUTF16   BaseFileType = "utf16"
)

// FileTypeModifiers are the +flags part of a p4 file type ("binary+l").
type FileTypeModifiers struct {
	// AlwaysWritable: file is always writable on the client (+w).
	AlwaysWritable bool
	// Executable: execute bit set on the client (+x).
	Executable bool
	// KeywordExpansion: RCS keyword expansion (+k).
	KeywordExpansion bool
	// Exclusive: exclusive open, locking (+l).
	Exclusive bool
	// FullRevisions: full compressed file stored per revision (+C).
	FullRevisions bool
	// RCSDeltas: deltas stored in RCS format (+D).
	RCSDeltas bool
	// FullUncompressed: full uncompressed file stored per revision (+F).
	FullUncompressed bool
	// HeadOnly: only the head revision is stored (+S).
	HeadOnly bool
	// StoredRevisions: only the most recent n revisions are stored (+Sn).
	StoredRevisions int
	// ModTime: original modtime preserved (+m).
	ModTime bool
	// ArchiveTrigger: archive trigger required (+X).
	ArchiveTrigger bool
}

// ParseFileTypeModifiers parses the flag characters after the '+' of a file
// type. An unrecognized flag is an error; unlike base types and actions,
// the modifier alphabet is closed.
func ParseFileTypeModifiers(s string) (FileTypeModifiers, error) {
	var m FileTypeModifiers
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 'w':
			m.AlwaysWritable = true
		case 'x':
			m.Executable = true
		case 'k':
			m.KeywordExpansion = true
		case 'l':
			m.Exclusive = true
		case 'C':
			m.FullRevisions = true
		case 'D':
			m.RCSDeltas = true
		case 'F':
			m.FullUncompressed = true
		case 'S':
			// +S may carry a revision count: +S16.
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j > i+1 {
				n := 0
				for _, d := range s[i+1 : j] {
					n = n*10 + int(d-'0')
				}
				m.StoredRevisions = n
				i = j - 1
			} else {
				m.HeadOnly = true
			}
		case 'm':
			m.ModTime = true
		case 'X':
			m.ArchiveTrigger = true
		default:
			return FileTypeModifiers{}, fmt.Errorf("unknown file type modifier %q", c)
		}
	}
	return m, nil
}

// String renders the modifiers back into p4 flag characters.
func (m FileTypeModifiers) String() string {
	var b strings.Builder
	if m.AlwaysWritable {
		b.WriteByte('w')
	}
	if m.Executable {
		b.WriteByte('x')
	}
	if m.KeywordExpansion {
		b.WriteByte('k')
	}
	if m.Exclusive {
		b.WriteByte('l')
	}
	if m.FullRevisions {
		b.WriteByte('C')
	}
	if m.RCSDeltas {
		b.WriteByte('D')
	}
	if m.FullUncompressed {
		b.WriteByte('F')
	}
	if m.HeadOnly {
		b.WriteByte('S')
	}
	if m.StoredRevisions > 0 {
		fmt.Fprintf(&b, "S%d", m.StoredRevisions)
	}
	if m.ModTime {
		b.WriteByte('m')
	}
	if m.ArchiveTrigger {
		b.WriteByte('X')
	}
	return b.String()
}

// FileType is a full p4 file type: base type plus optional modifiers.
type FileType struct {
	Base      BaseFileType
	Modifiers *FileTypeModifiers
}

// ParseFileType parses strings like "text", "binary+l", "text+Cx".
func ParseFileType(s string) (FileType, error) {
	base, flags, hasFlags := strings.Cut(s, "+")
	ft := FileType{Base: BaseFileType(base)}
	if hasFlags {
		m, err := ParseFileTypeModifiers(flags)
		if err != nil {
			return FileType{}, err
		}
		ft.Modifiers = &m
	}
	return ft, nil
}

func (ft FileType) String() string {
	if ft.Modifiers == nil {
		return string(ft.Base)
	}
	return string(ft.Base) + "+" + ft.Modifiers.String()
}
