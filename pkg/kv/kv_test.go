package kv_test

import (
	"errors"
	"testing"

	"github.com/skytonelabs/skytone/pkg/kv"
)

// newTestStore creates a Store for testing. Tests here use the Memory
// implementation; the same logic applies to the badger backend.
func newTestStore(t *testing.T) kv.Store {
	t.Helper()
	s := kv.NewMemory()
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetDelete(t *testing.T) {
	s := newTestStore(t)

	// Get non-existent key.
	_, err := s.Get("tour:visited")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Set and Get.
	if err := s.Set("tour:visited", []byte("yes")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("tour:visited")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "yes" {
		t.Fatalf("Get = %q, want %q", got, "yes")
	}

	// Overwrite.
	if err := s.Set("tour:visited", []byte("again")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = s.Get("tour:visited")
	if string(got) != "again" {
		t.Fatalf("Get after overwrite = %q, want %q", got, "again")
	}

	// Delete.
	if err := s.Delete("tour:visited"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("tour:visited"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete non-existent key should not error.
	if err := s.Delete("no-such-key"); err != nil {
		t.Fatalf("Delete non-existent: %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("k", []byte("abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := s.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	v[0] = 'X'

	v2, _ := s.Get("k")
	if string(v2) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", v2)
	}
}
