package config

// Default paths for local state
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./kitabu.db"

	// DefaultFallbackDir is the default directory for per-user fallback
	// reading-list snapshots
	DefaultFallbackDir = "./fallback"
)
