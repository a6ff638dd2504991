// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to AgentPulse lives: the MongoDB
// connection, the Graph API endpoint, the sync throttle knobs, and the
// admin token protecting the sync triggers.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Admin API protection
	AdminAPIToken string // Bearer token required on sync trigger endpoints

	// Graph API configuration
	GraphBaseURL     string        // Override for the Graph API base URL (blank means production)
	GraphCallTimeout time.Duration // Per-request deadline for outbound Graph calls

	// Sync throttle knobs
	RateLimitPerHour int           // Hourly Graph API call ceiling
	BatchPacing      time.Duration // Delay between agents in a batch run

	// CORS configuration for the dashboard frontend
	CORSOrigins string // Comma-separated list of allowed origins

	// Demo mode
	DemoSeed bool // Seed mock agents and metrics when the database is empty
}
