package p4

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// FileStat is one decoded `p4 fstat` record: everything the server knows
// about one depot file from this client's point of view. Head* fields
// describe the latest depot revision; Open* fields describe our workspace's
// pending open, if any.
type FileStat struct {
	DepotFile  string
	ClientFile string
	MovedFile  string
	IsMapped   bool
	Shelved    bool

	HeadAction  Action
	HeadType    FileType
	HeadTime    time.Time
	HeadModTime time.Time
	HeadRev     int
	HeadChange  int
	HaveRev     int
	FileSize    int64
	Digest      string

	OpenAction Action
	OpenType   FileType
	// OpenChange is the changelist the file is open in: a number or the
	// literal "default".
	OpenChange  string
	ActionOwner string
	OurLock     bool
	// OtherOpen lists user@client holders of other pending opens.
	OtherOpen    []string
	OtherActions []Action

	Extra map[string]string
}

func decodeFileStat(rec *tagged.Record) (FileStat, error) {
	var fs FileStat
	fields := map[string]fieldSpec{
		"depotFile":   {required: true, set: setString(&fs.DepotFile)},
		"clientFile":  {set: setString(&fs.ClientFile)},
		"movedFile":   {set: setString(&fs.MovedFile)},
		"isMapped":    {set: setFlag(&fs.IsMapped)},
		"shelved":     {set: setFlag(&fs.Shelved)},
		"headAction":  {set: setAction(&fs.HeadAction)},
		"headType":    {set: setFileType(&fs.HeadType)},
		"headTime":    {set: setUnixTime(&fs.HeadTime)},
		"headModTime": {set: setUnixTime(&fs.HeadModTime)},
		"headRev":     {set: setInt(&fs.HeadRev)},
		"headChange":  {set: setInt(&fs.HeadChange)},
		"haveRev":     {set: setInt(&fs.HaveRev)},
		"fileSize":    {set: setInt64(&fs.FileSize)},
		"digest":      {set: setString(&fs.Digest)},
		"action":      {set: setAction(&fs.OpenAction)},
		"type":        {set: setFileType(&fs.OpenType)},
		"change":      {set: setString(&fs.OpenChange)},
		"actionOwner": {set: setString(&fs.ActionOwner)},
		"ourLock":     {set: setFlag(&fs.OurLock)},
	}
	lists := map[string]func(string) error{
		"otherOpen":   appendString(&fs.OtherOpen),
		"otherAction": appendAction(&fs.OtherActions),
	}
	if err := decodeRecord("fstat", rec, fields, lists, &fs.Extra); err != nil {
		return FileStat{}, err
	}
	return fs, nil
}

// FstatCommand dumps file metadata (`p4 fstat`).
type FstatCommand struct {
	conn   *Conn
	max    int
	filter string
	paths  []string
}

// Fstat lists metadata for the given depot or client paths. At least one
// path is required; unlike changes, an unrestricted fstat would walk the
// whole depot.
func (c *Conn) Fstat(paths ...string) *FstatCommand {
	return &FstatCommand{conn: c, paths: paths}
}

// Max limits output to the first n files (-m).
func (cmd *FstatCommand) Max(n int) *FstatCommand {
	cmd.max = n
	return cmd
}

// Filter restricts output with a server-side filter expression (-F), e.g.
// "headType=binary" or "otherOpen".
func (cmd *FstatCommand) Filter(expr string) *FstatCommand {
	cmd.filter = expr
	return cmd
}

// Run executes the query. Zero matching files is success with an empty
// slice, not an error.
func (cmd *FstatCommand) Run(ctx context.Context) ([]FileStat, error) {
	if len(cmd.paths) == 0 {
		return nil, fmt.Errorf("%w: fstat: at least one file path is required", ErrInvalidArgument)
	}
	var args []string
	if cmd.max > 0 {
		args = append(args, "-m", strconv.Itoa(cmd.max))
	}
	if cmd.filter != "" {
		args = append(args, "-F", cmd.filter)
	}
	args = append(args, cmd.paths...)

	recs, err := cmd.conn.runTagged(ctx, "fstat", args)
	if err != nil {
		return nil, err
	}
	out := make([]FileStat, 0, len(recs))
	for _, rec := range recs {
		fs, err := decodeFileStat(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	return out, nil
}
