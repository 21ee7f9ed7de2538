package p4

import (
	"context"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// Mapping is one decoded `p4 where` record: the three names of a file under
// the client view. Where does not check whether any real file exists; it
// only reports what the view maps.
type Mapping struct {
	// DepotFile is the name in the depot.
	DepotFile string
	// ClientFile is the name on the client in Perforce syntax.
	ClientFile string
	// Path is the name on the client in local filesystem syntax.
	Path string
	// Unmap is set for lines the view excludes rather than maps.
	Unmap bool

	Extra map[string]string
}

func decodeMapping(rec *tagged.Record) (Mapping, error) {
	var m Mapping
	fields := map[string]fieldSpec{
		"depotFile":  {required: true, set: setString(&m.DepotFile)},
		"clientFile": {set: setString(&m.ClientFile)},
		"path":       {set: setString(&m.Path)},
		"unmap":      {set: setFlag(&m.Unmap)},
	}
	if err := decodeRecord("where", rec, fields, nil, &m.Extra); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

// WhereCommand shows how names are mapped by the client view (`p4 where`).
type WhereCommand struct {
	conn  *Conn
	paths []string
}

// Where maps the given files through the client view. With no paths, the
// mapping for the current directory and below is returned.
func (c *Conn) Where(paths ...string) *WhereCommand {
	return &WhereCommand{conn: c, paths: paths}
}

// Run executes the query.
func (cmd *WhereCommand) Run(ctx context.Context) ([]Mapping, error) {
	recs, err := cmd.conn.runTagged(ctx, "where", cmd.paths)
	if err != nil {
		return nil, err
	}
	out := make([]Mapping, 0, len(recs))
	for _, rec := range recs {
		m, err := decodeMapping(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
