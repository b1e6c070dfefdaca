// Package chunking splits document text into retrieval-sized chunks.
//
// Two strategies are provided. The smart strategy is a deterministic
// recursive splitter: paragraph boundaries first, then sentence
// boundaries, then fixed-width character slices as a last resort, with
// undersized chunks merged into neighbours. The agentic strategy asks
// an LLM for semantic break points and falls back to the smart
// strategy on any failure.
//
// Spans matching protected patterns (page markers, table blocks, phone
// numbers) are shielded from splitting by reversible placeholder
// substitution. Overlap injection runs last, on restored text.
package chunking
