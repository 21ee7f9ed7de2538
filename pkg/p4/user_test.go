package p4

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUsersPipeline(t *testing.T) {
	conn := fakeP4(t, `cat <<'EOF'
... User alice
... Email alice@example.com
... FullName Alice Liddell
... Type standard
... Update 1704067200
... Access 1706745600

... User build-bot
... Email build@example.com
... FullName Build Bot
... Type service
EOF
`)
	users, err := conn.Users().All().Run(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users", len(users))
	}
	alice := users[0]
	if alice.User != "alice" || alice.Email != "alice@example.com" || alice.FullName != "Alice Liddell" {
		t.Errorf("users[0] = %+v", alice)
	}
	if !alice.Update.Equal(time.Unix(1704067200, 0).UTC()) {
		t.Errorf("Update = %v", alice.Update)
	}
	if users[1].Type != "service" {
		t.Errorf("users[1] = %+v", users[1])
	}
}

func TestDecodeUserMissingName(t *testing.T) {
	rec := taggedRecord(t, "Email", "ghost@example.com")
	_, err := decodeUser(rec)
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if serr.Entity != "user" || serr.Field != "User" {
		t.Errorf("SchemaError = %+v", serr)
	}
}

func TestUsersRejectsNegativeMax(t *testing.T) {
	if _, err := New().Users().Max(-1).Run(context.Background()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v", err)
	}
}
