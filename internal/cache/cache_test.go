package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "k", []byte(`{"a":1}`))

	got, ok := c.Get(ctx, "k")

	if !ok || string(got) != `{"a":1}` {
		t.Fatalf("got (%q, %v)", got, ok)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryDeleteAndClear(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	c.Delete("a")

	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("deleted key still present")
	}

	c.Clear()

	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatal("cleared cache still serving entries")
	}
}
