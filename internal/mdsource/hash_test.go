package mdsource

import "testing"

func TestNormalize(t *testing.T) {
	normalized := Normalize("  What is SQLite? \r\n", "An embedded database.")
	expected := "what is sqlite?\nan embedded database."
	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		if Hash("Test", "Answer") != Hash("Test", "Answer") {
			t.Error("Expected hashes for identical content to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		if Hash("  what is go? ", "A programming language.") != Hash("What Is Go?", "A programming language.") {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("different content has different hashes", func(t *testing.T) {
		if Hash("Card 1", "a") == Hash("Card 2", "a") {
			t.Error("Expected hashes for different content to be different")
		}
	})

	t.Run("field boundary is preserved", func(t *testing.T) {
		if Hash("ab", "c") == Hash("a", "bc") {
			t.Error("Expected the front/back boundary to affect the hash")
		}
	})
}
