package config

import (
	"os"
	"testing"
	"time"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	path := writeSettings(t, "user: alice\n")

	changed := make(chan *Settings, 4)
	w, err := Watch(path, func(s *Settings) {
		changed <- s
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("user: bob\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite settings: %v", err)
	}

	select {
	case s := <-changed:
		if s.User != "bob" {
			t.Errorf("reloaded user = %q", s.User)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherSkipsInvalidContent(t *testing.T) {
	path := writeSettings(t, "user: alice\n")

	changed := make(chan *Settings, 4)
	w, err := Watch(path, func(s *Settings) {
		changed <- s
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("user: [broken\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite settings: %v", err)
	}
	// A save that does not load must not reach the callback.
	select {
	case s := <-changed:
		t.Errorf("unexpected callback with %+v", s)
	case <-time.After(5 * DefaultDebounce):
	}

	if err := os.WriteFile(path, []byte("user: carol\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite settings: %v", err)
	}
	select {
	case s := <-changed:
		if s.User != "carol" {
			t.Errorf("reloaded user = %q", s.User)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	path := writeSettings(t, "user: alice\n")
	w, err := Watch(path, func(*Settings) {})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.Close()
	w.Close()
}

func TestWatcherNoCallbackAfterClose(t *testing.T) {
	path := writeSettings(t, "user: alice\n")
	called := make(chan struct{}, 1)
	w, err := Watch(path, func(*Settings) {
		called <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.Close()

	// A debounce timer that fires after Close must not reach the callback.
	w.reload()
	select {
	case <-called:
		t.Error("callback invoked after Close")
	case <-time.After(100 * time.Millisecond):
	}
}
