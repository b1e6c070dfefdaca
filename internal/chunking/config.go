package chunking

// Default chunking parameters, in characters.
const (
	DefaultMaxChunkSize = 512
	DefaultMinChunkSize = 100
	DefaultOverlap      = 50
)

// Strategy selects the chunking algorithm.
type Strategy string

// Available strategies.
const (
	// StrategySmart is the deterministic recursive splitter.
	StrategySmart Strategy = "smart"

	// StrategyAgentic uses LLM-suggested break points with mandatory
	// fallback to StrategySmart.
	StrategyAgentic Strategy = "agentic"
)

// IsValid returns true if the strategy is recognised.
func (s Strategy) IsValid() bool {
	return s == StrategySmart || s == StrategyAgentic
}

// Config controls chunking behaviour.
type Config struct {
	// MaxChunkSize is the upper bound on chunk length. A chunk may
	// exceed it only when a single unsplittable span does.
	MaxChunkSize int

	// MinChunkSize is the lower bound below which chunks are merged
	// into a neighbour.
	MinChunkSize int

	// Overlap is the number of boundary characters injected from each
	// neighbour after chunking. Zero or negative disables overlap.
	Overlap int

	// ProtectPatterns shields protected spans from splitting.
	ProtectPatterns bool
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:    DefaultMaxChunkSize,
		MinChunkSize:    DefaultMinChunkSize,
		Overlap:         DefaultOverlap,
		ProtectPatterns: true,
	}
}
