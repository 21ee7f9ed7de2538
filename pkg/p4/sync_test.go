package p4

import (
	"context"
	"errors"
	"testing"
)

func TestSyncPipeline(t *testing.T) {
	conn := fakeP4(t, `cat <<'EOF'
... totalFileSize 2097152
... totalFileCount 2
... change 42
... depotFile //depot/src/main.go
... clientFile /home/alice/ws/src/main.go
... rev 7
... action updated
... fileSize 1048576

... depotFile //depot/src/old.go
... clientFile /home/alice/ws/src/old.go
... rev 3
... action deleted
EOF
`)
	files, err := conn.Sync("//depot/src/...").Run(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files", len(files))
	}
	first := files[0]
	if first.DepotFile != "//depot/src/main.go" || first.Rev != 7 || first.FileSize != 1048576 {
		t.Errorf("files[0] = %+v", first)
	}
	// The transfer totals ride on the first record and land in Extra.
	if first.Extra["totalFileCount"] != "2" || first.Extra["totalFileSize"] != "2097152" {
		t.Errorf("Extra = %v", first.Extra)
	}
	if files[1].Action != Action("deleted") {
		t.Errorf("files[1] = %+v", files[1])
	}
}

func TestSyncUpToDateIsCommandError(t *testing.T) {
	conn := fakeP4(t, `echo "//depot/src/... - file(s) up-to-date." >&2
exit 1
`)
	_, err := conn.Sync("//depot/src/...").Run(context.Background())
	var cerr *CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cerr.Message != "//depot/src/... - file(s) up-to-date." {
		t.Errorf("Message = %q", cerr.Message)
	}
}

func TestSyncFlagExclusion(t *testing.T) {
	_, err := New().Sync().ServerOnly().ClientOnly().Run(context.Background())
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v", err)
	}
}
