package core

import (
	"strings"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestHashShortAndStable(t *testing.T) {
	a := NewHash([]byte("loan_clean"))
	b, err := HashReader(strings.NewReader("loan_clean"))
	if err != nil {
		t.Fatalf("HashReader: %v", err)
	}
	if !a.Equals(b) {
		t.Errorf("expected NewHash and HashReader to agree, got %s vs %s", a, b)
	}
	if len(a.Short()) != 12 {
		t.Errorf("expected 12 char short hash, got %q", a.Short())
	}
	if Hash("abc").Short() != "abc" {
		t.Errorf("short hash of short input should be unchanged")
	}
}
