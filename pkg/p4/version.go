package p4

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/sergeknystautas/p4go/internal/runner"
)

// p4RevPattern pulls the release line out of `p4 -V` output, e.g.
// "Rev. P4/LINUX26X86_64/2023.1/2468153 (2023/07/24)." -> "2023.1".
var p4RevPattern = regexp.MustCompile(`P4/[^/]+/(\d+(?:\.\d+)+)/`)

// ToolVersion probes the installed p4 binary with `p4 -V` and reports its
// release as a semantic version (the YYYY.N release line, patch 0). No
// server connection is made.
func (c *Conn) ToolVersion(ctx context.Context) (*semver.Version, error) {
	out, err := c.newRunner().Run(ctx, runner.Invocation{
		Globals: []string{"-V"},
		Dir:     c.Dir,
		Env:     c.Env,
	})
	if err != nil {
		return nil, err
	}
	if err := classify(out); err != nil {
		return nil, err
	}
	return parseVersionOutput(string(out.Stdout))
}

// RequireVersion fails when the installed tool is older than min
// (e.g. "2020.1"). Useful before relying on tagged fields newer servers
// introduced.
func (c *Conn) RequireVersion(ctx context.Context, min string) error {
	minVer, err := semver.NewVersion(min)
	if err != nil {
		return fmt.Errorf("%w: invalid minimum version %q: %v", ErrInvalidArgument, min, err)
	}
	v, err := c.ToolVersion(ctx)
	if err != nil {
		return err
	}
	if v.LessThan(minVer) {
		return fmt.Errorf("p4 %s is older than required %s", v, minVer)
	}
	return nil
}

func parseVersionOutput(out string) (*semver.Version, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Rev.") {
			continue
		}
		m := p4RevPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := semver.NewVersion(m[1])
		if err != nil {
			return nil, fmt.Errorf("p4 -V: cannot parse release %q: %v", m[1], err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("p4 -V: no release line in output")
}
