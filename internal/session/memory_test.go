package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	sess := Session{
		Email:        "user@example.com",
		Name:         "User",
		AccessToken:  "access",
		RefreshToken: "refresh",
		CreatedAt:    time.Now(),
	}

	if err := store.Put(ctx, "sid-1", sess); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Email != sess.Email || got.AccessToken != sess.AccessToken {
		t.Errorf("Get() = %+v, want %+v", got, sess)
	}

	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_UnknownID(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	if err := store.Put(ctx, "sid", Session{Email: "user@example.com"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	if _, err := store.Get(ctx, "sid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after TTL = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	store.Put(ctx, "sid", Session{AccessToken: "old"})
	store.Put(ctx, "sid", Session{AccessToken: "new"})

	got, err := store.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "new")
	}
}
