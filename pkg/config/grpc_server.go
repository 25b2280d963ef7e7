package config

import (
	"fmt"
	"strings"
)

// GrpcServerConfig configures the gRPC listener that serves the standard health service.
type GrpcServerConfig struct {
	Enabled           bool `koanf:"enabled"`
	Port              int  `koanf:"port"`
	ReflectionEnabled bool `koanf:"reflection"`
}

// String returns a string representation of the gRPC server configuration.
func (c *GrpcServerConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- gRPC Server ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  port: %d\n", c.Port))
	b.WriteString(fmt.Sprintf("  reflection: %t\n", c.ReflectionEnabled))
	return b.String()
}

func (c *GrpcServerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Port)
	}
	return nil
}
