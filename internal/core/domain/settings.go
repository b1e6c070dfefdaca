package domain

// Runtime setting keys. Settings are read fresh per job so operators
// can change behaviour without restarting workers.
const (
	// SettingChunkingStrategy selects "smart" or "agentic" chunking.
	SettingChunkingStrategy = "chunking_strategy"
)
