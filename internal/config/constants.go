package config

// Default paths for on-disk storage
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookboss.db"

	// DefaultUploadsDir is the default directory for uploaded book photos
	DefaultUploadsDir = "./uploads"
)
