package driven

// Well-known configuration keys. Dot notation mirrors the TOML layout.
const (
	ConfigIntakeDir  = "pipeline.intake_dir"
	ConfigStorageDir = "pipeline.storage_dir"

	ConfigChunkMaxSize = "chunking.max_chunk_size"
	ConfigChunkMinSize = "chunking.min_chunk_size"
	ConfigChunkOverlap = "chunking.overlap"

	ConfigLLMProvider = "llm.provider"
	ConfigLLMBaseURL  = "llm.base_url"
	ConfigLLMModel    = "llm.model"
	ConfigLLMAPIKey   = "llm.api_key"

	ConfigConvertBinary = "convert.binary"
)

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
// Unlike SettingsStore this is operator-owned startup configuration, not
// per-job runtime state.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error
}
