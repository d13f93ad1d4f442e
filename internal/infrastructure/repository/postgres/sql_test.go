package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if !isNotFound(fmt.Errorf("wrapped: %w", sql.ErrNoRows)) {
		t.Fatalf("expected true for wrapped sql.ErrNoRows")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestIsSerializationFailure(t *testing.T) {
	t.Run("matches serialization_failure", func(t *testing.T) {
		err := &pq.Error{Code: "40001"}
		if !isSerializationFailure(err) {
			t.Fatalf("expected true for 40001")
		}
	})

	t.Run("matches deadlock_detected", func(t *testing.T) {
		err := fmt.Errorf("exec: %w", &pq.Error{Code: "40P01"})
		if !isSerializationFailure(err) {
			t.Fatalf("expected true for wrapped 40P01")
		}
	})

	t.Run("ignores other pq codes", func(t *testing.T) {
		err := &pq.Error{Code: "23505"}
		if isSerializationFailure(err) {
			t.Fatalf("expected false for unique violation")
		}
	})

	t.Run("ignores non-pq errors", func(t *testing.T) {
		if isSerializationFailure(errors.New("boom")) {
			t.Fatalf("expected false for plain error")
		}
	})
}
