package chunking

import (
	"strings"
	"testing"
)

func noOverlap(cfg Config) Config {
	cfg.Overlap = 0
	return cfg
}

func TestSmartChunk_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t"} {
		if chunks := SmartChunk(input, DefaultConfig()); len(chunks) != 0 {
			t.Errorf("input %q: expected no chunks, got %d", input, len(chunks))
		}
	}
}

func TestSmartChunk_SmallTextSingleChunk(t *testing.T) {
	cfg := Config{MaxChunkSize: 1000, MinChunkSize: 10, ProtectPatterns: true}

	chunks := SmartChunk("Sentence one. Sentence two. Sentence three.", cfg)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Sentence one. Sentence two. Sentence three." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSmartChunk_SentenceSplitting(t *testing.T) {
	cfg := Config{MaxChunkSize: 15, MinChunkSize: 1, ProtectPatterns: false}

	chunks := SmartChunk("Sentence one. Sentence two. Sentence three.", cfg)
	if len(chunks) < 2 {
		t.Fatalf("expected sentence-level splitting, got %d chunks", len(chunks))
	}
	for _, c := range chunks {
		// Each chunk fits the limit or is a single indivisible sentence.
		if len(c) > 15 && len(splitSentences(c)) > 1 {
			t.Errorf("chunk exceeds max size and is splittable: %q", c)
		}
	}
}

func TestSmartChunk_SizeBound(t *testing.T) {
	cfg := Config{MaxChunkSize: 80, MinChunkSize: 20, ProtectPatterns: false}

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("This is a fairly ordinary sentence used for testing purposes. ")
	}
	text := b.String()

	for _, c := range SmartChunk(text, cfg) {
		if len(c) > cfg.MaxChunkSize {
			t.Errorf("chunk length %d exceeds max %d: %q", len(c), cfg.MaxChunkSize, c)
		}
	}
}

func TestSmartChunk_CharacterFallback(t *testing.T) {
	cfg := Config{MaxChunkSize: 10, MinChunkSize: 1, ProtectPatterns: false}

	// One long unbroken "sentence" with no boundaries at all.
	text := strings.Repeat("x", 35)

	chunks := SmartChunk(text, cfg)
	for _, c := range chunks {
		if len(c) > 10 {
			t.Errorf("character slice exceeds max: %d", len(c))
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("character slices should reassemble the input")
	}
}

func TestSmartChunk_NoContentLoss(t *testing.T) {
	cfg := Config{MaxChunkSize: 60, MinChunkSize: 10, ProtectPatterns: false}

	text := "First paragraph with several words in it.\n\nSecond paragraph here. It has two sentences.\n\nThird one."

	chunks := SmartChunk(text, cfg)

	// Every non-whitespace character of the input must survive.
	strip := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' {
				return -1
			}
			return r
		}, s)
	}
	if strip(strings.Join(chunks, "")) != strip(text) {
		t.Error("chunk concatenation lost content")
	}
}

func TestSmartChunk_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	text := "Alpha paragraph one. With a second sentence.\n\nBeta paragraph. More text follows here. And here.\n\nGamma."

	first := SmartChunk(text, noOverlap(cfg))
	for i := 0; i < 5; i++ {
		again := SmartChunk(text, noOverlap(cfg))
		if len(again) != len(first) {
			t.Fatalf("run %d: chunk count changed: %d vs %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d: chunk %d changed", i, j)
			}
		}
	}
}

func TestSmartChunk_ProtectedTableStaysIntact(t *testing.T) {
	table := "=== TABLE 1 ===\nA | B\n1 | 2\n=== END TABLE 1 ==="
	cfg := Config{MaxChunkSize: 20, MinChunkSize: 1, ProtectPatterns: true}

	chunks := SmartChunk(table, cfg)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, table) {
			found = true
		}
	}
	if !found {
		t.Errorf("table block was torn across chunks: %q", chunks)
	}
}

func TestSmartChunk_MergesSmallChunks(t *testing.T) {
	cfg := Config{MaxChunkSize: 200, MinChunkSize: 50, ProtectPatterns: false}

	chunks := SmartChunk("Tiny.\n\nAlso small.\n\nA somewhat longer paragraph that easily clears the minimum chunk size on its own merits.", cfg)

	for i, c := range chunks {
		if len(c) < cfg.MinChunkSize && len(chunks) > 1 {
			t.Errorf("chunk %d below min size after merging: %q", i, c)
		}
	}
}

func TestSmartChunk_SingleTinyDocument(t *testing.T) {
	cfg := Config{MaxChunkSize: 512, MinChunkSize: 100, ProtectPatterns: true}

	chunks := SmartChunk("Short.", cfg)
	if len(chunks) != 1 || chunks[0] != "Short." {
		t.Errorf("single tiny document should stay one chunk, got %v", chunks)
	}
}

func TestSplitSentences(t *testing.T) {
	t.Run("basic boundaries", func(t *testing.T) {
		got := splitSentences("One two. Three four! Five six? Seven.")
		want := []string{"One two.", "Three four!", "Five six?", "Seven."}
		if len(got) != len(want) {
			t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("sentence %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("no split without capital", func(t *testing.T) {
		got := splitSentences("approx. value is 3.14 and that is all")
		if len(got) != 1 {
			t.Errorf("expected 1 sentence, got %d: %v", len(got), got)
		}
	})

	t.Run("no split without whitespace", func(t *testing.T) {
		got := splitSentences("www.Example.Com is not sentences")
		if len(got) != 1 {
			t.Errorf("expected 1 sentence, got %d: %v", len(got), got)
		}
	})
}

func TestMergeSmallChunks(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := mergeSmallChunks(nil, 10); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("trailing small merges backward", func(t *testing.T) {
		got := mergeSmallChunks([]string{"a long enough chunk", "x"}, 5)
		if len(got) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(got))
		}
		if got[0] != "a long enough chunk\n\nx" {
			t.Errorf("unexpected merge result: %q", got[0])
		}
	})

	t.Run("leading small merges forward", func(t *testing.T) {
		got := mergeSmallChunks([]string{"x", "a long enough chunk"}, 5)
		if len(got) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(got))
		}
		if got[0] != "x\n\na long enough chunk" {
			t.Errorf("unexpected merge result: %q", got[0])
		}
	})
}
