package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator(t *testing.T) {
	t.Parallel()

	g := NewUUIDGenerator()
	a, b := g.NewID(), g.NewID()
	if a == b {
		t.Fatal("ids must differ")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("not a uuid: %q", a)
	}
}

func TestSequence(t *testing.T) {
	t.Parallel()

	s := NewSequence("123", "124")
	if got := s.NewID(); got != "123" {
		t.Fatalf("got %q", got)
	}
	if got := s.NewID(); got != "124" {
		t.Fatalf("got %q", got)
	}
	if _, err := uuid.Parse(s.NewID()); err != nil {
		t.Fatal("expected uuid fallback")
	}
}
