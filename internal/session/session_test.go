package session

import (
	"context"
	"testing"
)

func TestSessionGetSetRoundTrip(t *testing.T) {
	sess := New("tok")

	if sess.Dirty() {
		t.Fatalf("fresh session must not be dirty")
	}
	if !sess.IsNew() {
		t.Fatalf("fresh session must report new")
	}

	if err := sess.Set("greeting", "hello"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !sess.Dirty() {
		t.Fatalf("set must mark the session dirty")
	}

	var got string
	ok, err := sess.Get("greeting", &got)
	if err != nil || !ok || got != "hello" {
		t.Fatalf("get: ok=%v err=%v got=%q", ok, err, got)
	}

	ok, err = sess.Get("missing", &got)
	if err != nil || ok {
		t.Fatalf("missing key must report absent, ok=%v err=%v", ok, err)
	}
}

func TestSessionDeleteMissingKeyStaysClean(t *testing.T) {
	sess := New("tok")
	sess.Delete("never-set")
	if sess.Dirty() {
		t.Fatalf("deleting an absent key must not dirty the session")
	}
}

func TestSessionGetTypeMismatch(t *testing.T) {
	sess := New("tok")
	if err := sess.Set("n", 42); err != nil {
		t.Fatalf("set: %v", err)
	}

	var s string
	ok, err := sess.Get("n", &s)
	if !ok || err == nil {
		t.Fatalf("expected present-but-undecodable, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := store.Load(ctx, "tok")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !sess.IsNew() {
		t.Fatalf("unknown token must yield a new session")
	}

	if err := sess.Set("count", 3); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	if sess.Dirty() {
		t.Fatalf("save must clear the dirty flag")
	}

	again, err := store.Load(ctx, "tok")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.IsNew() {
		t.Fatalf("saved token must not yield a new session")
	}
	var count int
	if ok, err := again.Get("count", &count); !ok || err != nil || count != 3 {
		t.Fatalf("reload value: ok=%v err=%v count=%d", ok, err, count)
	}
}

func TestMemoryStoreIsolatesLoadedSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, _ := store.Load(ctx, "tok")
	_ = sess.Set("k", "v1")
	_ = store.Save(ctx, sess)

	a, _ := store.Load(ctx, "tok")
	_ = a.Set("k", "v2")

	// a was never saved, so token "tok" still holds v1.
	b, _ := store.Load(ctx, "tok")
	var got string
	if ok, err := b.Get("k", &got); !ok || err != nil || got != "v1" {
		t.Fatalf("unsaved mutation leaked into the store: ok=%v err=%v got=%q", ok, err, got)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, _ := store.Load(ctx, "tok")
	_ = sess.Set("k", "v")
	_ = store.Save(ctx, sess)

	if err := store.Delete(ctx, "tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	again, _ := store.Load(ctx, "tok")
	if !again.IsNew() {
		t.Fatalf("deleted token must yield a new session")
	}
}
