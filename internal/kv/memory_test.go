package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, found, err := m.Get(ctx, "theme"); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}

	if err := m.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, found, err := m.Get(ctx, "theme")
	if err != nil || !found || v != "dark" {
		t.Fatalf("expected dark, got %q found=%v err=%v", v, found, err)
	}
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Close()

	if err := m.Set(ctx, "k", "v"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, _, err := m.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestRedis_KeyNamespace(t *testing.T) {
	s := NewRedis(nil, "lectura")
	if got := s.key("userStats"); got != "lectura:userStats" {
		t.Fatalf("unexpected key %q", got)
	}
}
