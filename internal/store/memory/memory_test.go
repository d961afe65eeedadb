package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/hookstudio/internal/store"
)

func TestNewStore(t *testing.T) {
	s := New(0)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.Count() != 0 || s.Used() != 0 {
		t.Errorf("New() should start empty, got count=%d used=%d", s.Count(), s.Used())
	}
}

func TestStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("value")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "value" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	// returned slices must not alias internal state
	got[0] = 'X'
	again, _ := s.Get(ctx, "k")
	if string(again) != "value" {
		t.Errorf("Get() result aliases stored value: %q", again)
	}

	if err := s.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if s.Used() != len("k")+len("v2") {
		t.Errorf("Used() = %d after overwrite, want %d", s.Used(), len("k")+len("v2"))
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() of missing key error = %v", err)
	}
	if s.Count() != 0 || s.Used() != 0 {
		t.Errorf("store not empty after delete: count=%d used=%d", s.Count(), s.Used())
	}
	if s.LastWrite().IsZero() {
		t.Error("LastWrite() not recorded")
	}
}

func TestStoreQuota(t *testing.T) {
	ctx := context.Background()
	s := New(10)

	if err := s.Set(ctx, "a", []byte("12345")); err != nil {
		t.Fatalf("Set() within quota error = %v", err)
	}
	err := s.Set(ctx, "b", []byte("123456"))
	if !errors.Is(err, store.ErrQuotaExceeded) {
		t.Fatalf("Set() over quota error = %v, want ErrQuotaExceeded", err)
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, store.ErrNotFound) {
		t.Error("failed Set() must not leave a value behind")
	}

	// overwriting frees the old value first
	if err := s.Set(ctx, "a", []byte("123456789")); err != nil {
		t.Errorf("Set() overwrite within quota error = %v", err)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "shared", []byte("x"))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}
