package p4

import (
	"context"
	"fmt"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// Dir is one decoded `p4 dirs` record. The server does not track directories
// individually; a path counts as a directory when undeleted files exist
// under it.
type Dir struct {
	Dir string

	Extra map[string]string
}

func decodeDir(rec *tagged.Record) (Dir, error) {
	var d Dir
	fields := map[string]fieldSpec{
		"dir": {required: true, set: setString(&d.Dir)},
	}
	if err := decodeRecord("dir", rec, fields, nil, &d.Extra); err != nil {
		return Dir{}, err
	}
	return d, nil
}

// DirsCommand lists depot subdirectories (`p4 dirs`). The recursive wildcard
// (...) is not supported by the server for this command; use *.
type DirsCommand struct {
	conn           *Conn
	clientOnly     bool
	includeDeleted bool
	haveOnly       bool
	paths          []string
}

// Dirs lists directories matching the given patterns.
func (c *Conn) Dirs(paths ...string) *DirsCommand {
	return &DirsCommand{conn: c, paths: paths}
}

// ClientOnly limits output to directories mapped by the client view (-C).
func (cmd *DirsCommand) ClientOnly() *DirsCommand {
	cmd.clientOnly = true
	return cmd
}

// IncludeDeleted also lists directories containing only deleted files (-D).
func (cmd *DirsCommand) IncludeDeleted() *DirsCommand {
	cmd.includeDeleted = true
	return cmd
}

// HaveOnly limits output to directories of files on the have list (-H).
func (cmd *DirsCommand) HaveOnly() *DirsCommand {
	cmd.haveOnly = true
	return cmd
}

// Run executes the query. Zero matching directories is success with an empty
// slice, not an error.
func (cmd *DirsCommand) Run(ctx context.Context) ([]Dir, error) {
	if len(cmd.paths) == 0 {
		return nil, fmt.Errorf("%w: dirs: at least one directory pattern is required", ErrInvalidArgument)
	}
	var args []string
	if cmd.clientOnly {
		args = append(args, "-C")
	}
	if cmd.includeDeleted {
		args = append(args, "-D")
	}
	if cmd.haveOnly {
		args = append(args, "-H")
	}
	args = append(args, cmd.paths...)

	recs, err := cmd.conn.runTagged(ctx, "dirs", args)
	if err != nil {
		return nil, err
	}
	out := make([]Dir, 0, len(recs))
	for _, rec := range recs {
		d, err := decodeDir(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
