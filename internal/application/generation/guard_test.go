package generation

import "testing"

func TestGuardExclusivePerProject(t *testing.T) {
	g := NewGuard()

	if !g.TryAcquire("p1") {
		t.Fatal("first acquire failed")
	}
	if g.TryAcquire("p1") {
		t.Fatal("second acquire succeeded, want exclusive hold")
	}
	if !g.TryAcquire("p2") {
		t.Fatal("acquire for a different project failed")
	}

	g.Release("p1")
	if !g.TryAcquire("p1") {
		t.Fatal("acquire after release failed")
	}
}

func TestGuardReleaseIdempotent(t *testing.T) {
	g := NewGuard()

	g.Release("never-held")

	if !g.TryAcquire("p1") {
		t.Fatal("acquire failed")
	}
	g.Release("p1")
	g.Release("p1")
	if g.Held("p1") {
		t.Fatal("project still held after release")
	}
}
