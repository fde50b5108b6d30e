package domain

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 100; i++ {
		id, err := GenerateID(IDLength)
		if err != nil {
			t.Fatalf("GenerateID: %v", err)
		}
		if len(id) != IDLength {
			t.Fatalf("len(id) = %d; want %d", len(id), IDLength)
		}
		if strings.ContainsAny(id, "-_") {
			t.Fatalf("id %q contains a skipped alphabet entry", id)
		}
		for _, c := range id {
			if !strings.ContainsRune(idAlphabet, c) {
				t.Fatalf("id %q contains %q outside the alphabet", id, c)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q in 100 draws", id)
		}
		seen[id] = true
	}
}

func TestGenerateUsername(t *testing.T) {
	for i := 0; i < 20; i++ {
		name, err := GenerateUsername()
		if err != nil {
			t.Fatalf("GenerateUsername: %v", err)
		}

		parts := strings.Split(name, "-")
		if len(parts) != 3 {
			t.Fatalf("username %q does not have three parts", name)
		}
		if len(parts[2]) != 5 {
			t.Fatalf("username %q suffix has length %d; want 5", name, len(parts[2]))
		}
	}
}
