package store

import (
	"errors"
	"testing"

	"github.com/vuciv/true-random-shuffle/internal/shared"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemory()

	t.Run("Get Missing Key", func(t *testing.T) {
		if _, err := s.Get("absent"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Set And Get", func(t *testing.T) {
		if err := s.Set("token", "abc"); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		value, err := s.Get("token")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if value != "abc" {
			t.Errorf("expected 'abc', got %q", value)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		s.Set("token", "first")
		s.Set("token", "second")
		value, _ := s.Get("token")
		if value != "second" {
			t.Errorf("expected 'second', got %q", value)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s.Set("gone", "x")
		if err := s.Delete("gone"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := s.Get("gone"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete Missing Key Is Silent", func(t *testing.T) {
		if err := s.Delete("never-existed"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	s := NewSQLite(db)

	t.Run("Round Trip", func(t *testing.T) {
		if err := s.Set("access_token", "tok-1"); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		value, err := s.Get("access_token")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if value != "tok-1" {
			t.Errorf("expected 'tok-1', got %q", value)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		s.Set("access_token", "tok-2")
		value, _ := s.Get("access_token")
		if value != "tok-2" {
			t.Errorf("expected 'tok-2', got %q", value)
		}
	})

	t.Run("Missing Key", func(t *testing.T) {
		if _, err := s.Get("nope"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s.Set("doomed", "x")
		if err := s.Delete("doomed"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := s.Get("doomed"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})
}
