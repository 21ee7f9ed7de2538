package p4

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// ClientSpec is a client workspace specification as read from `p4 client -o`
// or written back through `p4 client -i`. Update and Access are kept as the
// server's formatted date strings so a spec round-trips unmodified.
type ClientSpec struct {
	Client        string
	Owner         string
	Host          string
	Update        string
	Access        string
	Description   string
	Root          string
	AltRoots      []string
	Options       string
	SubmitOptions string
	LineEnd       string
	Stream        string
	// View holds the raw mapping lines ("//depot/... //ws/..."). Lines are
	// kept verbatim: depot paths may contain spaces and quoting, so
	// splitting them is the caller's concern.
	View []string

	Extra map[string]string
}

func decodeClientSpec(rec *tagged.Record) (ClientSpec, error) {
	var cs ClientSpec
	fields := map[string]fieldSpec{
		"Client":        {set: setString(&cs.Client)},
		"Owner":         {set: setString(&cs.Owner)},
		"Host":          {set: setString(&cs.Host)},
		"Update":        {set: setString(&cs.Update)},
		"Access":        {set: setString(&cs.Access)},
		"Description":   {set: setString(&cs.Description)},
		"Root":          {set: setString(&cs.Root)},
		"Options":       {set: setString(&cs.Options)},
		"SubmitOptions": {set: setString(&cs.SubmitOptions)},
		"LineEnd":       {set: setString(&cs.LineEnd)},
		"Stream":        {set: setString(&cs.Stream)},
		// `p4 clients` names the workspace with a lowercase key.
		"client": {set: setString(&cs.Client)},
	}
	lists := map[string]func(string) error{
		"View":    appendString(&cs.View),
		"AltRoot": appendString(&cs.AltRoots),
	}
	if err := decodeRecord("client", rec, fields, lists, &cs.Extra); err != nil {
		return ClientSpec{}, err
	}
	// Required, but spelled "Client" by `client -o` and "client" by
	// `clients`, so the presence check happens after either could have set it.
	if cs.Client == "" {
		return ClientSpec{}, &SchemaError{Entity: "client", Field: "Client"}
	}
	return cs, nil
}

// SpecForm renders the spec in the form-file format `p4 client -i` reads:
// `Field:<tab>value` lines, multi-line and list fields as indented blocks.
func (cs *ClientSpec) SpecForm() string {
	var b strings.Builder
	writeSpecField(&b, "Client", cs.Client)
	writeSpecField(&b, "Owner", cs.Owner)
	writeSpecField(&b, "Host", cs.Host)
	writeSpecBlock(&b, "Description", strings.Split(cs.Description, "\n"))
	writeSpecField(&b, "Root", cs.Root)
	writeSpecBlock(&b, "AltRoots", cs.AltRoots)
	writeSpecField(&b, "Options", cs.Options)
	writeSpecField(&b, "SubmitOptions", cs.SubmitOptions)
	writeSpecField(&b, "LineEnd", cs.LineEnd)
	writeSpecField(&b, "Stream", cs.Stream)
	writeSpecBlock(&b, "View", cs.View)
	return b.String()
}

func writeSpecField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s:\t%s\n\n", name, value)
}

func writeSpecBlock(b *strings.Builder, name string, lines []string) {
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return
	}
	fmt.Fprintf(b, "%s:\n", name)
	for _, line := range lines {
		fmt.Fprintf(b, "\t%s\n", line)
	}
	b.WriteString("\n")
}

// ClientCommand reads one client spec (`p4 client -o`).
type ClientCommand struct {
	conn *Conn
	name string
}

// ReadClient fetches a client spec. An empty name reads the connection's
// current client.
func (c *Conn) ReadClient(name string) *ClientCommand {
	return &ClientCommand{conn: c, name: name}
}

// Run executes the read and decodes the single resulting record.
func (cmd *ClientCommand) Run(ctx context.Context) (ClientSpec, error) {
	args := []string{"-o"}
	if cmd.name != "" {
		args = append(args, cmd.name)
	}
	recs, err := cmd.conn.runTagged(ctx, "client", args)
	if err != nil {
		return ClientSpec{}, err
	}
	if len(recs) == 0 {
		return ClientSpec{}, fmt.Errorf("p4 client -o: %w", &tagged.ParseError{Line: 1, Context: "expected one record, got none"})
	}
	return decodeClientSpec(recs[0])
}

// SaveClientCommand writes a client spec back (`p4 client -i`).
type SaveClientCommand struct {
	conn *Conn
	spec *ClientSpec
}

// SaveClient writes the given spec to the server.
func (c *Conn) SaveClient(spec *ClientSpec) *SaveClientCommand {
	return &SaveClientCommand{conn: c, spec: spec}
}

// Run feeds the spec form to `p4 client -i` on stdin and returns the
// server's confirmation message ("Client xyz saved.").
func (cmd *SaveClientCommand) Run(ctx context.Context) (string, error) {
	if cmd.spec == nil || cmd.spec.Client == "" {
		return "", fmt.Errorf("%w: save client: spec must name a client", ErrInvalidArgument)
	}
	return cmd.conn.runPlain(ctx, "client", []string{"-i"}, []byte(cmd.spec.SpecForm()))
}

// ClientsCommand lists client specs (`p4 clients`).
type ClientsCommand struct {
	conn *Conn
	user string
	max  int
}

// Clients lists client workspaces known to the server.
func (c *Conn) Clients() *ClientsCommand {
	return &ClientsCommand{conn: c}
}

// User limits output to clients owned by the given user (-u).
func (cmd *ClientsCommand) User(user string) *ClientsCommand {
	cmd.user = user
	return cmd
}

// Max limits output to the first n clients (-m).
func (cmd *ClientsCommand) Max(n int) *ClientsCommand {
	cmd.max = n
	return cmd
}

// Run executes the query. Zero matching clients is success with an empty
// slice, not an error.
func (cmd *ClientsCommand) Run(ctx context.Context) ([]ClientSpec, error) {
	var args []string
	if cmd.user != "" {
		args = append(args, "-u", cmd.user)
	}
	if cmd.max > 0 {
		args = append(args, "-m", strconv.Itoa(cmd.max))
	}
	recs, err := cmd.conn.runTagged(ctx, "clients", args)
	if err != nil {
		return nil, err
	}
	out := make([]ClientSpec, 0, len(recs))
	for _, rec := range recs {
		cs, err := decodeClientSpec(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}
