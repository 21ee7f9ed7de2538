package p4

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// SyncedFile is one decoded `p4 sync` record: a file the sync added,
// updated or removed in the workspace.
type SyncedFile struct {
	DepotFile  string
	ClientFile string
	Rev        int
	Action     Action
	FileSize   int64

	// Extra retains the transfer-total fields (totalFileSize,
	// totalFileCount, change) the server attaches to the first record,
	// along with anything else outside the schema.
	Extra map[string]string
}

func decodeSyncedFile(rec *tagged.Record) (SyncedFile, error) {
	var sf SyncedFile
	fields := map[string]fieldSpec{
		"depotFile":  {required: true, set: setString(&sf.DepotFile)},
		"clientFile": {set: setString(&sf.ClientFile)},
		"rev":        {set: setInt(&sf.Rev)},
		"action":     {set: setAction(&sf.Action)},
		"fileSize":   {set: setInt64(&sf.FileSize)},
	}
	if err := decodeRecord("sync", rec, fields, nil, &sf.Extra); err != nil {
		return SyncedFile{}, err
	}
	return sf, nil
}

// SyncCommand updates the workspace to its view of the depot (`p4 sync`).
type SyncCommand struct {
	conn       *Conn
	force      bool
	preview    bool
	serverOnly bool
	clientOnly bool
	safe       bool
	max        int
	paths      []string
}

// Sync brings workspace files up to date with the depot, limited to the
// given paths when present. Paths may carry revision specifiers.
func (c *Conn) Sync(paths ...string) *SyncCommand {
	return &SyncCommand{conn: c, paths: paths}
}

// Force resynchronizes even files the client already has, overwriting
// writable files (-f). Open files are unaffected.
func (cmd *SyncCommand) Force() *SyncCommand {
	cmd.force = true
	return cmd
}

// Preview reports what would be synced without updating the workspace (-n).
func (cmd *SyncCommand) Preview() *SyncCommand {
	cmd.preview = true
	return cmd
}

// ServerOnly updates server metadata without transferring files (-k).
func (cmd *SyncCommand) ServerOnly() *SyncCommand {
	cmd.serverOnly = true
	return cmd
}

// ClientOnly populates the workspace without updating the server's have
// list (-p).
func (cmd *SyncCommand) ClientOnly() *SyncCommand {
	cmd.clientOnly = true
	return cmd
}

// Safe adds an MD5 check against content modified outside of p4's control
// before overwriting (-s).
func (cmd *SyncCommand) Safe() *SyncCommand {
	cmd.safe = true
	return cmd
}

// Max limits the sync to the first n files (-m); with Preview this sizes a
// sync without transferring file data.
func (cmd *SyncCommand) Max(n int) *SyncCommand {
	cmd.max = n
	return cmd
}

// Run executes the sync. An already up-to-date workspace reports
// CommandError("file(s) up-to-date."), which callers typically treat as
// success; that interpretation is deliberately left to them.
func (cmd *SyncCommand) Run(ctx context.Context) ([]SyncedFile, error) {
	if cmd.serverOnly && cmd.clientOnly {
		return nil, fmt.Errorf("%w: sync: server-only and client-only are mutually exclusive", ErrInvalidArgument)
	}
	var args []string
	if cmd.force {
		args = append(args, "-f")
	}
	if cmd.preview {
		args = append(args, "-n")
	}
	if cmd.serverOnly {
		args = append(args, "-k")
	}
	if cmd.clientOnly {
		args = append(args, "-p")
	}
	if cmd.safe {
		args = append(args, "-s")
	}
	if cmd.max > 0 {
		args = append(args, "-m", strconv.Itoa(cmd.max))
	}
	args = append(args, cmd.paths...)

	recs, err := cmd.conn.runTagged(ctx, "sync", args)
	if err != nil {
		return nil, err
	}
	out := make([]SyncedFile, 0, len(recs))
	for _, rec := range recs {
		sf, err := decodeSyncedFile(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, nil
}
