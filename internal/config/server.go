package config

// ServerConfig holds configuration for the HTTP servers started by the CLI
// (the report viewer and the stand-in application).
type ServerConfig struct {
	Port     string
	Timezone string
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig(getenv func(string) string) ServerConfig {
	port := getenv("PORT")
	if port == "" {
		port = "3000" // Same port the suite targets by default
	}

	timezone := getenv("APP_TIMEZONE")
	if timezone == "" {
		timezone = "UTC"
	}

	return ServerConfig{
		Port:     port,
		Timezone: timezone,
	}
}
