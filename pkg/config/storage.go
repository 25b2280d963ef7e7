package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported storage drivers.
const (
	StorageMemory   = "memory"
	StorageLevelDB  = "leveldb"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// StorageConfig selects and configures the durable record store.
type StorageConfig struct {
	Driver string `koanf:"driver"`
	// Path is the on-disk location for leveldb (directory) and sqlite (file).
	Path string `koanf:"path"`
	// URL is the connection string for postgres.
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	// RecoverCorrupt replaces unreadable records with defaults instead of failing startup.
	RecoverCorrupt bool `koanf:"recovercorrupt"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  path: %s\n", c.Path))
	b.WriteString(fmt.Sprintf("  url: %s\n", MaskURL(c.URL)))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  recovercorrupt: %t\n", c.RecoverCorrupt))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageMemory:
	case StorageLevelDB, StorageSQLite:
		if c.Path == "" {
			return fmt.Errorf("storage path is required for driver %q", c.Driver)
		}
	case StoragePostgres:
		if c.URL == "" {
			return fmt.Errorf("storage URL is not configured")
		}
		if !isValidPostgresURL(c.URL) {
			return fmt.Errorf("storage URL must start with 'postgres://': %s", MaskURL(c.URL))
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("storage timeout is not configured")
	}
	return nil
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

// MaskURL hides the credentials part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}
