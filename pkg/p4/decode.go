package p4

import (
	"strconv"
	"strings"
	"time"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// fieldSpec describes how one tagged field lands on an entity attribute.
type fieldSpec struct {
	required bool
	set      func(value string) error
}

// decodeRecord maps a record's fields onto an entity via its schema.
// Fields with no schema entry are retained in the extra bag rather than
// dropped, so records from unknown server versions round-trip without data
// loss. Indexed fields (View0, View1, ... / depotFile0, ...) are routed to
// the matching list collector in record order.
//
// Decoding is total over any syntactically valid record: only a missing
// required field or an untransformable value is an error.
func decodeRecord(entity string, rec *tagged.Record, fields map[string]fieldSpec, lists map[string]func(value string) error, extra *map[string]string) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range rec.Fields() {
		if spec, ok := fields[f.Name]; ok {
			if err := spec.set(f.Value); err != nil {
				return &SchemaError{Entity: entity, Field: f.Name, Value: f.Value, Err: err}
			}
			seen[f.Name] = true
			continue
		}
		if base, ok := splitIndexed(f.Name); ok {
			if add, found := lists[base]; found {
				if err := add(f.Value); err != nil {
					return &SchemaError{Entity: entity, Field: f.Name, Value: f.Value, Err: err}
				}
				continue
			}
		}
		if *extra == nil {
			*extra = make(map[string]string)
		}
		(*extra)[f.Name] = f.Value
	}
	for name, spec := range fields {
		if spec.required && !seen[name] {
			return &SchemaError{Entity: entity, Field: name}
		}
	}
	return nil
}

// splitIndexed splits a trailing-digit field name ("View0" -> "View"). p4
// emits indexes in ascending order, so collectors append in record order and
// the numeric value itself is not needed.
func splitIndexed(name string) (string, bool) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == 0 || i == len(name) {
		return "", false
	}
	return name[:i], true
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setInt64(dst *int64) func(string) error {
	return func(v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

// setUnixTime converts p4's epoch-seconds timestamps.
func setUnixTime(dst *time.Time) func(string) error {
	return func(v string) error {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*dst = time.Unix(sec, 0).UTC()
		return nil
	}
}

// setFlag handles presence-only fields such as isMapped, where the field
// appearing at all is the signal and the value is empty.
func setFlag(dst *bool) func(string) error {
	return func(string) error {
		*dst = true
		return nil
	}
}

func setAction(dst *Action) func(string) error {
	return func(v string) error {
		*dst = Action(v)
		return nil
	}
}

func setFileType(dst *FileType) func(string) error {
	return func(v string) error {
		ft, err := ParseFileType(v)
		if err != nil {
			return err
		}
		*dst = ft
		return nil
	}
}

func setStatus(dst *ChangeStatus) func(string) error {
	return func(v string) error {
		*dst = ChangeStatus(v)
		return nil
	}
}

func appendString(dst *[]string) func(string) error {
	return func(v string) error {
		*dst = append(*dst, v)
		return nil
	}
}

func appendInt(dst *[]int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimPrefix(v, "#"))
		if err != nil {
			return err
		}
		*dst = append(*dst, n)
		return nil
	}
}

func appendAction(dst *[]Action) func(string) error {
	return func(v string) error {
		*dst = append(*dst, Action(v))
		return nil
	}
}
