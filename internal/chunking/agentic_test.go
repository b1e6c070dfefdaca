package chunking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// stubLLM returns a canned response (or error) for every chat call.
type stubLLM struct {
	response string
	err      error
	calls    int
	lastOpts driven.ChatOptions
}

func (s *stubLLM) Chat(_ context.Context, _ []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	s.calls++
	s.lastOpts = opts
	return s.response, s.err
}

func (s *stubLLM) ModelName() string { return "stub" }
func (s *stubLLM) Close() error      { return nil }

const agenticSample = "The first topic runs for a while and says things.\n\nThe second topic is different. It also continues for some time with more detail."

func smartEquivalent(t *testing.T, got []string, text string, cfg Config) {
	t.Helper()
	want := SmartChunk(text, cfg)
	if len(got) != len(want) {
		t.Fatalf("expected smart fallback (%d chunks), got %d chunks", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d differs from smart fallback:\n got %q\nwant %q", i, got[i], want[i])
		}
	}
}

func TestAgenticChunk_FallsBackWithoutLLM(t *testing.T) {
	cfg := DefaultConfig()
	smartEquivalent(t, AgenticChunk(context.Background(), nil, agenticSample, cfg), agenticSample, cfg)
}

func TestAgenticChunk_FallbackCases(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name string
		llm  *stubLLM
	}{
		{"transport error", &stubLLM{err: errors.New("connection refused")}},
		{"empty response", &stubLLM{response: ""}},
		{"lmstudio sentinel", &stubLLM{response: "[LM Studio] no model loaded"}},
		{"error sentinel", &stubLLM{response: "Error: backend overloaded"}},
		{"not json", &stubLLM{response: "here are some break points: 0, 40"}},
		{"break_points not a list", &stubLLM{response: `{"break_points": "0,40"}`}},
		{"missing break_points", &stubLLM{response: `{"reasoning": "none"}`}},
		{"all points out of range", &stubLLM{response: `{"break_points": [-5, 99999]}`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AgenticChunk(context.Background(), tc.llm, agenticSample, cfg)
			smartEquivalent(t, got, agenticSample, cfg)
		})
	}
}

func TestAgenticChunk_UsesValidBreakPoints(t *testing.T) {
	text := agenticSample
	split := len("The first topic runs for a while and says things.\n\n")
	llm := &stubLLM{response: fmt.Sprintf(`{"break_points": [0, %d], "reasoning": "topic change"}`, split)}

	cfg := Config{MaxChunkSize: 512, MinChunkSize: 10, ProtectPatterns: true}
	chunks := AgenticChunk(context.Background(), llm, text, cfg)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "The first topic runs for a while and says things." {
		t.Errorf("unexpected first chunk: %q", chunks[0])
	}
}

func TestAgenticChunk_StripsCodeFence(t *testing.T) {
	llm := &stubLLM{response: "```json\n{\"break_points\": [0], \"reasoning\": \"whole\"}\n```"}

	cfg := Config{MaxChunkSize: 512, MinChunkSize: 10, ProtectPatterns: true}
	chunks := AgenticChunk(context.Background(), llm, agenticSample, cfg)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != agenticSample {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestAgenticChunk_ResplitsOversizedChunks(t *testing.T) {
	// The LLM proposes a single chunk far above the limit; it must be
	// re-segmented deterministically.
	llm := &stubLLM{response: `{"break_points": [0]}`}
	cfg := Config{MaxChunkSize: 40, MinChunkSize: 5, ProtectPatterns: false}

	chunks := AgenticChunk(context.Background(), llm, agenticSample, cfg)
	for _, c := range chunks {
		if len(c) > cfg.MaxChunkSize && len(splitSentences(c)) > 1 {
			t.Errorf("oversized splittable chunk survived: %q", c)
		}
	}
}

func TestAgenticChunk_MergesUndersizedChunks(t *testing.T) {
	// Break point close to the end yields a tiny trailing chunk, which
	// must merge into its predecessor.
	split := len(agenticSample) - 8
	llm := &stubLLM{response: fmt.Sprintf(`{"break_points": [0, %d]}`, split)}
	cfg := Config{MaxChunkSize: 512, MinChunkSize: 20, ProtectPatterns: true}

	chunks := AgenticChunk(context.Background(), llm, agenticSample, cfg)
	if len(chunks) != 1 {
		t.Fatalf("expected tiny chunk merged into predecessor, got %d chunks", len(chunks))
	}
}

func TestAgenticChunk_RequestOptions(t *testing.T) {
	llm := &stubLLM{response: `{"break_points": [0]}`}
	cfg := Config{MaxChunkSize: 512, MinChunkSize: 10, ProtectPatterns: true}

	AgenticChunk(context.Background(), llm, agenticSample, cfg)

	if llm.calls != 1 {
		t.Fatalf("expected exactly one chat call, got %d", llm.calls)
	}
	if !llm.lastOpts.JSONMode {
		t.Error("expected JSON mode requested")
	}
	if !llm.lastOpts.BypassCache {
		t.Error("chunking decisions must bypass the response cache")
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                        `{"a":1}`,
		"```json\n{\"a\":1}\n```":          `{"a":1}`,
		"```\n{\"a\":1}\n```":              `{"a":1}`,
		"noise before ```json\n{}\n``` after": `{}`,
	}
	for in, want := range cases {
		if got := stripCodeFence(in); got != want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}
