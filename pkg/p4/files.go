package p4

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// DepotFile is one decoded `p4 files` record: the head (or requested)
// revision of a depot file.
type DepotFile struct {
	DepotFile string
	Rev       int
	Change    int
	Action    Action
	Type      FileType
	Time      time.Time

	Extra map[string]string
}

func decodeDepotFile(rec *tagged.Record) (DepotFile, error) {
	var df DepotFile
	fields := map[string]fieldSpec{
		"depotFile": {required: true, set: setString(&df.DepotFile)},
		"rev":       {required: true, set: setInt(&df.Rev)},
		"change":    {set: setInt(&df.Change)},
		"action":    {set: setAction(&df.Action)},
		"type":      {set: setFileType(&df.Type)},
		"time":      {set: setUnixTime(&df.Time)},
	}
	if err := decodeRecord("file", rec, fields, nil, &df.Extra); err != nil {
		return DepotFile{}, err
	}
	return df, nil
}

// FilesCommand lists depot files (`p4 files`).
type FilesCommand struct {
	conn         *Conn
	allRevisions bool
	syncableOnly bool
	ignoreCase   bool
	max          int
	paths        []string
}

// Files lists details about the given depot paths: name, revision, type,
// action and changelist of the head revision.
func (c *Conn) Files(paths ...string) *FilesCommand {
	return &FilesCommand{conn: c, paths: paths}
}

// AllRevisions lists every revision in range instead of just the highest (-a).
func (cmd *FilesCommand) AllRevisions() *FilesCommand {
	cmd.allRevisions = true
	return cmd
}

// SyncableOnly hides deleted, purged and archived revisions (-e).
func (cmd *FilesCommand) SyncableOnly() *FilesCommand {
	cmd.syncableOnly = true
	return cmd
}

// IgnoreCase matches the file argument case-insensitively on a
// case-sensitive server (-i).
func (cmd *FilesCommand) IgnoreCase() *FilesCommand {
	cmd.ignoreCase = true
	return cmd
}

// Max limits output to the first n files (-m).
func (cmd *FilesCommand) Max(n int) *FilesCommand {
	cmd.max = n
	return cmd
}

// Run executes the query. Zero matching files is success with an empty
// slice, not an error.
func (cmd *FilesCommand) Run(ctx context.Context) ([]DepotFile, error) {
	if len(cmd.paths) == 0 {
		return nil, fmt.Errorf("%w: files: at least one file path is required", ErrInvalidArgument)
	}
	var args []string
	if cmd.allRevisions {
		args = append(args, "-a")
	}
	if cmd.syncableOnly {
		args = append(args, "-e")
	}
	if cmd.ignoreCase {
		args = append(args, "-i")
	}
	if cmd.max > 0 {
		args = append(args, "-m", strconv.Itoa(cmd.max))
	}
	args = append(args, cmd.paths...)

	recs, err := cmd.conn.runTagged(ctx, "files", args)
	if err != nil {
		return nil, err
	}
	out := make([]DepotFile, 0, len(recs))
	for _, rec := range recs {
		df, err := decodeDepotFile(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, df)
	}
	return out, nil
}
