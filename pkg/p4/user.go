package p4

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sergeknystautas/p4go/pkg/p4/tagged"
)

// User is one decoded `p4 users` record.
type User struct {
	User     string
	Email    string
	FullName string
	Type     string
	Update   time.Time
	Access   time.Time

	Extra map[string]string
}

func decodeUser(rec *tagged.Record) (User, error) {
	var u User
	fields := map[string]fieldSpec{
		"User":     {required: true, set: setString(&u.User)},
		"Email":    {set: setString(&u.Email)},
		"FullName": {set: setString(&u.FullName)},
		"Type":     {set: setString(&u.Type)},
		"Update":   {set: setUnixTime(&u.Update)},
		"Access":   {set: setUnixTime(&u.Access)},
	}
	if err := decodeRecord("user", rec, fields, nil, &u.Extra); err != nil {
		return User{}, err
	}
	return u, nil
}

// UsersCommand lists server users (`p4 users`).
type UsersCommand struct {
	conn  *Conn
	max   int
	all   bool
	names []string
}

// Users lists users, optionally restricted to the given names.
func (c *Conn) Users(names ...string) *UsersCommand {
	return &UsersCommand{conn: c, names: names}
}

// Max limits output to the first n users (-m).
func (cmd *UsersCommand) Max(n int) *UsersCommand {
	cmd.max = n
	return cmd
}

// All includes service and operator users (-a).
func (cmd *UsersCommand) All() *UsersCommand {
	cmd.all = true
	return cmd
}

// Run executes the query. Zero matching users is success with an empty
// slice, not an error.
func (cmd *UsersCommand) Run(ctx context.Context) ([]User, error) {
	if cmd.max < 0 {
		return nil, fmt.Errorf("%w: users: max must not be negative, got %d", ErrInvalidArgument, cmd.max)
	}
	var args []string
	if cmd.all {
		args = append(args, "-a")
	}
	if cmd.max > 0 {
		args = append(args, "-m", strconv.Itoa(cmd.max))
	}
	args = append(args, cmd.names...)

	recs, err := cmd.conn.runTagged(ctx, "users", args)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(recs))
	for _, rec := range recs {
		u, err := decodeUser(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
