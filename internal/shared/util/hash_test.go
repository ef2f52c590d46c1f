package util

import "testing"

func TestHashUserKey(t *testing.T) {
	got := HashUserKey("guest:abc")
	if got != HashUserKey(" guest:abc ") {
		t.Fatalf("expected surrounding whitespace to be ignored")
	}
	if got == HashUserKey("guest:abd") {
		t.Fatalf("expected distinct users to hash differently")
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}
