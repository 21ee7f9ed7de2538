package p4

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// SubmitResult is the merged outcome of a `p4 submit`. The server reports it
// across several tagged records: the opening record names the change and its
// open file count, one record per file follows, and the closing record
// carries the final (possibly renumbered) changelist number.
type SubmitResult struct {
	// Change is the changelist number the submit started with.
	Change int
	// SubmittedChange is the final number after any renumbering on commit.
	SubmittedChange int
	// OpenFiles is the number of files the submit covered.
	OpenFiles int
	// Files are the per-file actions committed.
	Files []ChangelistFile

	Extra map[string]string
}

func decodeSubmit(recs []*tagged.Record) (SubmitResult, error) {
	var res SubmitResult
	sawFinal := false
	for _, rec := range recs {
		// Per-file records are keyed by depotFile; everything else is
		// merged into the scalar result.
		if df, ok := rec.Lookup("depotFile"); ok {
			f := ChangelistFile{DepotFile: df}
			f.Action = Action(rec.Get("action"))
			if rv, ok := rec.Lookup("rev"); ok {
				n, err := strconv.Atoi(rv)
				if err != nil {
					return SubmitResult{}, &SchemaError{Entity: "submit", Field: "rev", Value: rv, Err: err}
				}
				f.Rev = n
			}
			res.Files = append(res.Files, f)
			continue
		}
		fields := map[string]fieldSpec{
			"change":          {set: setInt(&res.Change)},
			"openFiles":       {set: setInt(&res.OpenFiles)},
			"submittedChange": {set: setInt(&res.SubmittedChange)},
		}
		if err := decodeRecord("submit", rec, fields, nil, &res.Extra); err != nil {
			return SubmitResult{}, err
		}
		if _, ok := rec.Lookup("submittedChange"); ok {
			sawFinal = true
		}
	}
	if !sawFinal {
		return SubmitResult{}, &SchemaError{Entity: "submit", Field: "submittedChange"}
	}
	return res, nil
}

// SubmitCommand commits open files to the depot (`p4 submit`). Whether the
// underlying operation is idempotent is the tool's concern; this layer runs
// it exactly once and never retries.
type SubmitCommand struct {
	conn        *Conn
	change      int
	description string
	reopen      bool
	paths       []string
}

// Submit commits the default changelist, or a numbered one via Change.
func (c *Conn) Submit() *SubmitCommand {
	return &SubmitCommand{conn: c}
}

// Change submits the given pending changelist (-c) instead of the default.
func (cmd *SubmitCommand) Change(n int) *SubmitCommand {
	cmd.change = n
	return cmd
}

// Description submits the default changelist with the given description
// (-d). Mutually exclusive with Change.
func (cmd *SubmitCommand) Description(d string) *SubmitCommand {
	cmd.description = d
	return cmd
}

// Reopen reopens the submitted files for edit afterwards (-r).
func (cmd *SubmitCommand) Reopen() *SubmitCommand {
	cmd.reopen = true
	return cmd
}

// Files restricts the submit to files matching the given paths.
func (cmd *SubmitCommand) Files(paths ...string) *SubmitCommand {
	cmd.paths = append(cmd.paths, paths...)
	return cmd
}

// Run executes the submit and decodes the server's report.
func (cmd *SubmitCommand) Run(ctx context.Context) (SubmitResult, error) {
	if cmd.change < 0 {
		return SubmitResult{}, fmt.Errorf("%w: submit: changelist number must be positive, got %d", ErrInvalidArgument, cmd.change)
	}
	if cmd.change > 0 && cmd.description != "" {
		return SubmitResult{}, fmt.Errorf("%w: submit: change and description are mutually exclusive", ErrInvalidArgument)
	}
	if cmd.change > 0 && len(cmd.paths) > 0 {
		return SubmitResult{}, fmt.Errorf("%w: submit: a numbered changelist cannot be combined with file paths", ErrInvalidArgument)
	}
	var args []string
	if cmd.reopen {
		args = append(args, "-r")
	}
	if cmd.change > 0 {
		args = append(args, "-c", strconv.Itoa(cmd.change))
	}
	if cmd.description != "" {
		args = append(args, "-d", cmd.description)
	}
	args = append(args, cmd.paths...)

	recs, err := cmd.conn.runTagged(ctx, "submit", args)
	if err != nil {
		return SubmitResult{}, err
	}
	return decodeSubmit(recs)
}
