package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/menuboard/internal/notes"
)

func TestKVStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	kv := NewKVStore(setupTestDB(t))

	if err := kv.Set(ctx, "notes:v1:7", map[string]string{"note": "hi"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got map[string]string
	if err := kv.Get(ctx, "notes:v1:7", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["note"] != "hi" {
		t.Errorf("value = %v", got)
	}

	if err := kv.Set(ctx, "notes:v1:7", map[string]string{"note": "bye"}, 0); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := kv.Get(ctx, "notes:v1:7", &got); err != nil || got["note"] != "bye" {
		t.Errorf("after overwrite = %v, %v", got, err)
	}

	if err := kv.Delete(ctx, "notes:v1:7"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := kv.Get(ctx, "notes:v1:7", &got); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestKVStoreExpiry(t *testing.T) {
	ctx := context.Background()
	kv := NewKVStore(setupTestDB(t))

	if err := kv.Set(ctx, "a", 1, time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "b", 2, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(time.Millisecond)

	var v int
	if err := kv.Get(ctx, "a", &v); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("expired get err = %v", err)
	}
	keys, err := kv.ListKeys(ctx, "")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "b" {
		t.Errorf("keys = %v, want [b]", keys)
	}
}

func TestKVStoreListKeysPrefix(t *testing.T) {
	ctx := context.Background()
	kv := NewKVStore(setupTestDB(t))

	for _, k := range []string{"notes:v1:1", "notes:v1:2", "notes:v10:1", "notes:v_:1"} {
		if err := kv.Set(ctx, k, true, 0); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	keys, err := kv.ListKeys(ctx, "notes:v1:")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("keys = %v, want 2", keys)
	}

	keys, err = kv.ListKeys(ctx, "notes:v_:")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("underscore should be literal, keys = %v", keys)
	}
}

func TestNotesServiceOnKVStore(t *testing.T) {
	ctx := context.Background()
	svc := notes.NewService(NewKVStore(setupTestDB(t)), time.Hour)

	if _, err := svc.Put(ctx, "visitor", notes.Note{ItemID: 3, Text: "no sugar"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	n, err := svc.Count(ctx, "visitor")
	if err != nil || n != 1 {
		t.Errorf("count = %d, %v", n, err)
	}
}
