package store

import (
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	user, biz := seedBusiness(t, db, "owner@example.com", "Blue Cup")
	ss := NewSessionStore(db)

	sess, err := ss.Create(user.ID, biz.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserID != user.ID || got.BusinessID != biz.ID {
		t.Fatalf("session = %+v", got)
	}

	if err := ss.Delete(sess.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionExpired(t *testing.T) {
	db := setupTestDB(t)
	user, biz := seedBusiness(t, db, "owner@example.com", "Blue Cup")
	ss := NewSessionStore(db)

	sess, err := ss.Create(user.ID, biz.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := db.Exec(`UPDATE sessions SET expires_at = '2000-01-01 00:00:00' WHERE id = ?`, sess.ID); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for expired session")
	}

	n, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}
