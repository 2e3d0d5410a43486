package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	"github.com/vladislavdragonenkov/bookhaven/internal/storage/memory"
)

func TestKVStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, domain.CartKey, "[]"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, ok, err := store.Get(ctx, domain.CartKey)
	if err != nil || !ok || value != "[]" {
		t.Fatalf("unexpected get result: %q ok=%v err=%v", value, ok, err)
	}

	if err := store.Remove(ctx, domain.CartKey); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := store.Remove(ctx, domain.CartKey); err != nil {
		t.Fatalf("second remove must be a no-op, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, domain.CartKey); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestKVStore_Quota(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore(memory.WithQuota(20))

	if err := store.Set(ctx, "k", "0123456789"); err != nil {
		t.Fatalf("set within quota failed: %v", err)
	}
	// Перезапись того же ключа учитывает освобождаемое место.
	if err := store.Set(ctx, "k", "0123456789abcdefg"); err != nil {
		t.Fatalf("overwrite within quota failed: %v", err)
	}

	err := store.Set(ctx, "other", "0123456789")
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	value, _, _ := store.Get(ctx, "k")
	if value != "0123456789abcdefg" {
		t.Fatalf("failed write must not change stored data, got %q", value)
	}
	if keys := store.Keys(); len(keys) != 1 || keys[0] != "k" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestSessionStorage_IsolatesSessions(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewSessionStorage(time.Minute)

	a := storage.ForSession("tab-a")
	b := storage.ForSession("tab-b")

	if err := a.Set(ctx, domain.CartKey, `[{"title":"Dune"}]`); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok, _ := b.Get(ctx, domain.CartKey); ok {
		t.Fatal("sessions must not share cart data")
	}
	if _, ok, _ := storage.ForSession("tab-a").Get(ctx, domain.CartKey); !ok {
		t.Fatal("expected the same data for the same session id")
	}
}
