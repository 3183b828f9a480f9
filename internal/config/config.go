package config

import "os"

// Config holds process configuration, supplied via environment variables.
// SupabaseURL/SupabaseServiceKey configure the hosted auth service used by
// the admin bridge; the relay itself needs only a port.
type Config struct {
	Port               string
	SupabaseURL        string
	SupabaseServiceKey string
}

func Load() Config {
	return Config{
		Port:               getenv("PORT", "8080"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
