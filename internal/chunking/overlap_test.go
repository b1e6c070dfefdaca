package chunking

import (
	"strings"
	"testing"
)

func TestWithOverlap_NoOpCases(t *testing.T) {
	chunks := []string{"alpha", "beta"}

	if got := WithOverlap(chunks, 0); len(got) != 2 || got[0] != "alpha" {
		t.Errorf("overlap 0 should be a no-op, got %v", got)
	}
	if got := WithOverlap(chunks, -5); len(got) != 2 || got[1] != "beta" {
		t.Errorf("negative overlap should be a no-op, got %v", got)
	}
	if got := WithOverlap(nil, 50); got != nil {
		t.Errorf("empty input should stay empty, got %v", got)
	}
}

func TestWithOverlap_InjectsNeighbourContext(t *testing.T) {
	chunks := []string{
		"first chunk ends with HEAD",
		"middle chunk body text here",
		"TAIL starts the last chunk",
	}

	got := WithOverlap(chunks, 4)
	if len(got) != 3 {
		t.Fatalf("chunk count changed: %d", len(got))
	}

	if got[0] != "first chunk ends with HEAD ... midd" {
		t.Errorf("first chunk: %q", got[0])
	}
	if got[1] != "HEAD ... middle chunk body text here ... TAIL" {
		t.Errorf("middle chunk: %q", got[1])
	}
	if got[2] != "here ... TAIL starts the last chunk" {
		t.Errorf("last chunk: %q", got[2])
	}
}

func TestWithOverlap_ShortNeighbourUsesWholeText(t *testing.T) {
	got := WithOverlap([]string{"ab", "a considerably longer second chunk"}, 10)

	if !strings.HasPrefix(got[1], "ab ... ") {
		t.Errorf("short predecessor should contribute its whole text: %q", got[1])
	}
}

func TestWithOverlap_SingleChunkUnchanged(t *testing.T) {
	got := WithOverlap([]string{"only chunk"}, 50)
	if len(got) != 1 || got[0] != "only chunk" {
		t.Errorf("single chunk must be untouched, got %v", got)
	}
}

func TestWithOverlap_DoesNotMutateInput(t *testing.T) {
	chunks := []string{"one chunk here", "two chunk here"}
	WithOverlap(chunks, 5)

	if chunks[0] != "one chunk here" || chunks[1] != "two chunk here" {
		t.Errorf("input slice was mutated: %v", chunks)
	}
}
