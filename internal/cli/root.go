// Package cli implements storefrontctl, the offline admin console over the durable store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/abgdnv/storefront/internal/engine"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/logger"
	"github.com/spf13/cobra"
)

// RootOptions holds the global flags shared by every command.
type RootOptions struct {
	Driver         string
	Path           string
	URL            string
	Timeout        time.Duration
	RecoverCorrupt bool
	Format         string // "text" | "json"
	Verbose        bool
}

// ValidFormats are the accepted --format values.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the storefrontctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefrontctl",
		Short: "Storefront admin console",
		Long: `Inspect and administer a storefront's durable records without the HTTP host.

The console opens the same record store the host uses. Stop the host first
when using the leveldb or sqlite drivers; both take an exclusive lock.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.Driver, "driver", config.StorageLevelDB, "storage driver (leveldb|sqlite|postgres)")
	f.StringVar(&opts.Path, "path", "data/storefront", "leveldb directory or sqlite file")
	f.StringVar(&opts.URL, "url", "", "postgres connection URL")
	f.DurationVar(&opts.Timeout, "timeout", 5*time.Second, "storage connect timeout")
	f.BoolVar(&opts.RecoverCorrupt, "recover-corrupt", false, "replace unreadable records with defaults")
	f.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log storage activity to stderr")

	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))

	return cmd
}

func (o *RootOptions) storageConfig() config.StorageConfig {
	return config.StorageConfig{
		Driver:         o.Driver,
		Path:           o.Path,
		URL:            o.URL,
		Timeout:        o.Timeout,
		RecoverCorrupt: o.RecoverCorrupt,
	}
}

func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	if !o.Verbose {
		return logger.Discard()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// withEngine opens the store, loads an Engine without side effects and runs fn against it.
func (o *RootOptions) withEngine(cmd *cobra.Command, fn func(ctx context.Context, eng *engine.Engine) error) error {
	cfg := o.storageConfig()
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid storage flags", err)
	}
	if cfg.Driver == config.StorageMemory {
		return NewExitError(ExitCommandError, "the memory driver has nothing to administer")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := o.logger(cmd.ErrOrStderr())

	records, err := store.Open(ctx, cfg, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if err := records.Close(); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}()

	eng, err := engine.New(ctx, records, nil, engine.WithLogger(log), engine.WithRecoverCorrupt(cfg.RecoverCorrupt))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load store", err)
	}
	defer func() { _ = eng.Close(ctx) }()

	return fn(ctx, eng)
}
