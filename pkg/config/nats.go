package config

import (
	"fmt"
	"strings"
	"time"
)

// NATSConfig configures the JetStream connection used for analytics events.
type NATSConfig struct {
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	// DuplicateWindow is how long JetStream remembers message ids; a purchase event
	// republished inside the window is stored once. Zero keeps the server default.
	DuplicateWindow time.Duration `koanf:"duplicatewindow"`
}

func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	fmt.Fprintf(&b, "  url: %s\n", c.Url)
	fmt.Fprintf(&b, "  timeout: %s\n", c.Timeout)
	fmt.Fprintf(&b, "  duplicatewindow: %s\n", c.DuplicateWindow)
	return b.String()
}

func (c *NATSConfig) Validate() error {
	switch {
	case c.Url == "":
		return fmt.Errorf("NATS URL is not configured")
	case !strings.HasPrefix(c.Url, "nats://") && !strings.HasPrefix(c.Url, "tls://"):
		return fmt.Errorf("NATS URL must start with nats:// or tls://: %s", c.Url)
	case c.Timeout <= 0:
		return fmt.Errorf("nats dial timeout is not configured")
	case c.DuplicateWindow < 0:
		return fmt.Errorf("nats duplicate window must not be negative")
	}
	return nil
}
