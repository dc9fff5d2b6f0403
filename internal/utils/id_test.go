package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewIDIsUUID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewID returned %q: %v", id, err)
	}
	if NewID() == id {
		t.Fatal("two ids collided")
	}
}

func TestNewConnIDPrefix(t *testing.T) {
	if id := NewConnID(); !strings.HasPrefix(id, "conn-") {
		t.Fatalf("unexpected connection id %q", id)
	}
}
