package power

import (
	"context"
	"testing"
)

func TestDisabledCoordinatorReturnsNoopLock(t *testing.T) {
	c := NewSystemdCoordinator(false)

	lock, err := c.Acquire(context.Background(), "testing")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if lock == nil {
		t.Fatal("Acquire returned nil lock, want noop lock")
	}

	// 空锁可以重复释放
	lock.Release()
	lock.Release()
}
