package p4

import (
	"errors"
	"strconv"
	"testing"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

func taggedRecord(t *testing.T, pairs ...string) *tagged.Record {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("taggedRecord needs name/value pairs, got %d items", len(pairs))
	}
	r := &tagged.Record{}
	for i := 0; i < len(pairs); i += 2 {
		r.Add(pairs[i], pairs[i+1])
	}
	return r
}

func TestDecodeChangelist(t *testing.T) {
	rec := taggedRecord(t,
		"change", "42",
		"time", "1704067200",
		"user", "alice",
		"client", "ws",
		"status", "submitted",
		"changeType", "public",
		"desc", "Initial import\nwith a second line",
	)
	cl, err := decodeChangelist(rec)
	if err != nil {
		t.Fatalf("decodeChangelist: %v", err)
	}
	if cl.Number != 42 || cl.User != "alice" || cl.Client != "ws" {
		t.Errorf("changelist = %+v", cl)
	}
	if cl.ChangeType != "public" {
		t.Errorf("ChangeType = %q", cl.ChangeType)
	}
	if cl.Description != "Initial import\nwith a second line" {
		t.Errorf("Description = %q", cl.Description)
	}
	if len(cl.Extra) != 0 {
		t.Errorf("Extra = %v, want empty", cl.Extra)
	}
}

func TestDecodeChangelistMissingRequiredField(t *testing.T) {
	rec := taggedRecord(t, "user", "alice", "desc", "no number here")
	_, err := decodeChangelist(rec)
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if serr.Entity != "changelist" || serr.Field != "change" {
		t.Errorf("SchemaError = %+v", serr)
	}
	if serr.Err != nil {
		t.Errorf("missing field should have nil cause, got %v", serr.Err)
	}
}

func TestDecodeChangelistBadNumber(t *testing.T) {
	rec := taggedRecord(t, "change", "12x")
	_, err := decodeChangelist(rec)
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if serr.Field != "change" || serr.Value != "12x" {
		t.Errorf("SchemaError = %+v", serr)
	}
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("SchemaError should wrap the strconv cause, got %v", serr.Err)
	}
}

func TestDecodeChangelistRetainsUnknownFields(t *testing.T) {
	rec := taggedRecord(t,
		"change", "42",
		"futureField", "from a newer server",
		"anotherOne", "kept too",
	)
	cl, err := decodeChangelist(rec)
	if err != nil {
		t.Fatalf("unknown fields must not fail decoding: %v", err)
	}
	if cl.Extra["futureField"] != "from a newer server" || cl.Extra["anotherOne"] != "kept too" {
		t.Errorf("Extra = %v", cl.Extra)
	}
}

func TestDecodeDescribedChangelistFiles(t *testing.T) {
	rec := taggedRecord(t,
		"change", "42",
		"user", "alice",
		"desc", "Two files",
		"depotFile0", "//depot/dir/a.go",
		"action0", "edit",
		"rev0", "7",
		"depotFile1", "//depot/dir/b.go",
		"action1", "add",
		"rev1", "1",
	)
	cl, err := decodeChangelist(rec)
	if err != nil {
		t.Fatalf("decodeChangelist: %v", err)
	}
	if len(cl.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(cl.Files))
	}
	if cl.Files[0].DepotFile != "//depot/dir/a.go" || cl.Files[0].Action != ActionEdit || cl.Files[0].Rev != 7 {
		t.Errorf("first file = %+v", cl.Files[0])
	}
	if cl.Files[1].Action != ActionAdd {
		t.Errorf("second file action = %q", cl.Files[1].Action)
	}
}
