// Package p4 is a typed client over the Perforce p4 command-line tool. It
// drives p4 as a subprocess, feeds it argument vectors, and decodes its
// tagged output into typed entities (changelists, file stats, client specs,
// users). It is a faithful transport and decode layer: it never caches,
// retries against, or second-guesses the server's state.
//
// Every operation hangs off a Conn:
//
//	conn := p4.New()
//	conn.Port = "perforce:1666"
//	changes, err := conn.Changes().Max(10).Status(p4.StatusPending).Run(ctx)
//
// Calls are synchronous: each Run blocks until the subprocess exits.
// Cancellation and timeouts are imposed through the context, which kills the
// subprocess when it fires. A Conn holds no mutable state and is safe for
// concurrent use.
package p4

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sergeknystautas/p4go/internal/runner"
	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// Conn describes how to reach the p4 tool and server. The zero value runs
// "p4" from PATH against whatever environment defaults apply; every field
// overrides one source of ambient configuration so nothing here is a
// process-wide singleton.
type Conn struct {
	// Binary overrides the p4 executable used. Useful for portable installs
	// outside PATH. Empty means "p4".
	Binary string
	// Port overrides any P4PORT setting (protocol:host:port).
	Port string
	// User overrides any P4USER, USER, or USERNAME setting.
	User string
	// Password overrides any P4PASSWD setting.
	Password string
	// Client overrides any P4CLIENT setting.
	Client string
	// Charset overrides any P4CHARSET setting. New sets "utf8".
	Charset string
	// Retries is how many times p4 itself retries a command when the
	// network times out during execution (-r). Zero omits the flag.
	Retries int
	// Dir is the working directory for spawned subprocesses.
	Dir string
	// Env holds environment variable overrides for spawned subprocesses.
	Env map[string]string
	// Trace, when set, receives one-line debug messages about every
	// invocation.
	Trace func(format string, args ...any)
}

// New returns a connection with the defaults the tool expects: p4 from PATH
// and utf8 charset handling.
func New() *Conn {
	return &Conn{Charset: "utf8"}
}

// flagGlobals builds the global flags that precede every subcommand.
func (c *Conn) flagGlobals() []string {
	var g []string
	if c.Charset != "" {
		g = append(g, "-C", c.Charset)
	}
	if c.Port != "" {
		g = append(g, "-p", c.Port)
	}
	if c.User != "" {
		g = append(g, "-u", c.User)
	}
	if c.Password != "" {
		g = append(g, "-P", c.Password)
	}
	if c.Client != "" {
		g = append(g, "-c", c.Client)
	}
	if c.Retries > 0 {
		g = append(g, "-r", strconv.Itoa(c.Retries))
	}
	return g
}

func (c *Conn) newRunner() *runner.Runner {
	r := runner.New(c.Binary)
	r.Trace = c.Trace
	return r
}

// runTagged executes a subcommand in tagged mode and decodes stdout into
// records. Process-level failures and non-zero exits short-circuit before
// any tokenization; a failed command's stdout may be partial or absent.
func (c *Conn) runTagged(ctx context.Context, subcommand string, args []string) ([]*tagged.Record, error) {
	out, err := c.newRunner().Run(ctx, runner.Invocation{
		Globals:    append([]string{"-ztag"}, c.flagGlobals()...),
		Subcommand: subcommand,
		Args:       args,
		Dir:        c.Dir,
		Env:        c.Env,
	})
	if err != nil {
		return nil, err
	}
	if err := classify(out); err != nil {
		return nil, err
	}
	recs, err := tagged.Parse(string(out.Stdout))
	if err != nil {
		return nil, fmt.Errorf("p4 %s: %w", subcommand, err)
	}
	return recs, nil
}

// runPlain executes a subcommand without tagged output and returns trimmed
// stdout. Used by form-submitting commands (`client -i`) whose output is a
// one-line confirmation, not records.
func (c *Conn) runPlain(ctx context.Context, subcommand string, args []string, stdin []byte) (string, error) {
	out, err := c.newRunner().Run(ctx, runner.Invocation{
		Globals:    c.flagGlobals(),
		Subcommand: subcommand,
		Args:       args,
		Dir:        c.Dir,
		Env:        c.Env,
		Stdin:      stdin,
	})
	if err != nil {
		return "", err
	}
	if err := classify(out); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}
