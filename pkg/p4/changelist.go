package p4

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// ChangeStatus is the lifecycle state of a changelist. Unlisted values the
// server sends pass through untouched.
type ChangeStatus string

const (
	StatusPending   ChangeStatus = "pending"
	StatusSubmitted ChangeStatus = "submitted"
	StatusShelved   ChangeStatus = "shelved"
)

// Changelist is one decoded `p4 changes` or `p4 describe` record.
type Changelist struct {
	Number      int
	Time        time.Time
	User        string
	Client      string
	Status      ChangeStatus
	ChangeType  string // "public" or "restricted"
	Description string

	// Files holds the per-file entries of a described changelist; empty for
	// `p4 changes` output, which does not list files.
	Files []ChangelistFile

	// Extra retains fields with no schema entry, keyed by tagged field name.
	Extra map[string]string
}

// ChangelistFile is one file entry of a described changelist.
type ChangelistFile struct {
	DepotFile string
	Action    Action
	Rev       int
}

func decodeChangelist(rec *tagged.Record) (Changelist, error) {
	var cl Changelist
	var (
		depotFiles []string
		actions    []Action
		revs       []int
	)
	fields := map[string]fieldSpec{
		"change":     {required: true, set: setInt(&cl.Number)},
		"time":       {set: setUnixTime(&cl.Time)},
		"user":       {set: setString(&cl.User)},
		"client":     {set: setString(&cl.Client)},
		"status":     {set: setStatus(&cl.Status)},
		"changeType": {set: setString(&cl.ChangeType)},
		"desc":       {set: setString(&cl.Description)},
	}
	lists := map[string]func(string) error{
		"depotFile": appendString(&depotFiles),
		"action":    appendAction(&actions),
		"rev":       appendInt(&revs),
	}
	if err := decodeRecord("changelist", rec, fields, lists, &cl.Extra); err != nil {
		return Changelist{}, err
	}
	for i, df := range depotFiles {
		f := ChangelistFile{DepotFile: df}
		if i < len(actions) {
			f.Action = actions[i]
		}
		if i < len(revs) {
			f.Rev = revs[i]
		}
		cl.Files = append(cl.Files, f)
	}
	return cl, nil
}

// ChangesCommand lists changelists (`p4 changes`).
type ChangesCommand struct {
	conn   *Conn
	max    int
	status ChangeStatus
	user   string
	client string
	long   bool
	paths  []string
}

// Changes lists submitted and pending changelists, optionally restricted to
// the given depot paths. With no restriction, the server's full changelist
// history is in play, so Max is usually wanted.
func (c *Conn) Changes(paths ...string) *ChangesCommand {
	return &ChangesCommand{conn: c, paths: paths}
}

// Max limits output to the given number of most recent changelists (-m).
func (cmd *ChangesCommand) Max(n int) *ChangesCommand {
	cmd.max = n
	return cmd
}

// Status limits output to changelists in the given state (-s).
func (cmd *ChangesCommand) Status(s ChangeStatus) *ChangesCommand {
	cmd.status = s
	return cmd
}

// User limits output to changelists owned by the given user (-u).
func (cmd *ChangesCommand) User(user string) *ChangesCommand {
	cmd.user = user
	return cmd
}

// Client limits output to changelists from the given client workspace (-c).
func (cmd *ChangesCommand) Client(client string) *ChangesCommand {
	cmd.client = client
	return cmd
}

// Long requests full descriptions instead of the first line (-l).
func (cmd *ChangesCommand) Long() *ChangesCommand {
	cmd.long = true
	return cmd
}

// Run executes the query. Zero matching changelists is success with an empty
// slice, not an error.
func (cmd *ChangesCommand) Run(ctx context.Context) ([]Changelist, error) {
	if cmd.max < 0 {
		return nil, fmt.Errorf("%w: changes: max must not be negative, got %d", ErrInvalidArgument, cmd.max)
	}
	var args []string
	if cmd.long {
		args = append(args, "-l")
	}
	if cmd.max > 0 {
		args = append(args, "-m", strconv.Itoa(cmd.max))
	}
	if cmd.status != "" {
		args = append(args, "-s", string(cmd.status))
	}
	if cmd.user != "" {
		args = append(args, "-u", cmd.user)
	}
	if cmd.client != "" {
		args = append(args, "-c", cmd.client)
	}
	args = append(args, cmd.paths...)

	recs, err := cmd.conn.runTagged(ctx, "changes", args)
	if err != nil {
		return nil, err
	}
	out := make([]Changelist, 0, len(recs))
	for _, rec := range recs {
		cl, err := decodeChangelist(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, nil
}

// DescribeCommand fetches one changelist with its file list (`p4 describe`).
type DescribeCommand struct {
	conn   *Conn
	change int
}

// Describe fetches the given changelist. The -s form is always used: file
// diffs are content, not metadata, and are not part of the tagged decode
// path.
func (c *Conn) Describe(change int) *DescribeCommand {
	return &DescribeCommand{conn: c, change: change}
}

// Run executes the query and decodes the single resulting record.
func (cmd *DescribeCommand) Run(ctx context.Context) (Changelist, error) {
	if cmd.change <= 0 {
		return Changelist{}, fmt.Errorf("%w: describe: changelist number must be positive, got %d", ErrInvalidArgument, cmd.change)
	}
	recs, err := cmd.conn.runTagged(ctx, "describe", []string{"-s", strconv.Itoa(cmd.change)})
	if err != nil {
		return Changelist{}, err
	}
	if len(recs) == 0 {
		return Changelist{}, fmt.Errorf("p4 describe %d: %w", cmd.change, &tagged.ParseError{Line: 1, Context: "expected one record, got none"})
	}
	return decodeChangelist(recs[0])
}
