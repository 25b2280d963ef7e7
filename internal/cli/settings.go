package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/internal/engine"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewSettingsCommand groups settings export and import.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Export or replace the store settings",
	}
	cmd.AddCommand(newSettingsExportCommand(rootOpts))
	cmd.AddCommand(newSettingsImportCommand(rootOpts))
	return cmd
}

func newSettingsExportCommand(opts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the settings as YAML",
		Example: `  storefrontctl settings export > settings.yaml
  storefrontctl settings export -o settings.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(_ context.Context, eng *engine.Engine) error {
				s := eng.Settings()
				data, err := marshalSettings(s)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to encode settings", err)
				}
				if output != "" {
					if err := os.WriteFile(output, data, 0o644); err != nil {
						return WrapExitError(ExitCommandError, "failed to write settings", err)
					}
					return opts.formatter(cmd).Success(map[string]string{"exported": output}, func(w io.Writer) error {
						_, err := fmt.Fprintf(w, "Settings written to %s\n", output)
						return err
					})
				}
				return opts.formatter(cmd).Success(s, func(w io.Writer) error {
					_, err := w.Write(data)
					return err
				})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newSettingsImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the settings with a YAML document",
		Long: `Replace the settings with a YAML document.

The document replaces the stored settings as a whole: omitted fields become empty.
Unknown keys are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read settings file", err)
			}
			s, err := unmarshalSettings(data)
			if err != nil {
				return WrapExitError(ExitFailure, "invalid settings file", err)
			}
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				f := opts.formatter(cmd)
				if err := eng.UpdateSettings(ctx, s); err != nil {
					return f.Failure(ExitCommandError, "failed to save settings", err)
				}
				return f.Success(s, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Settings for %q imported\n", s.StoreName)
					return err
				})
			})
		},
	}
}

func marshalSettings(s domain.Settings) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalSettings(data []byte) (domain.Settings, error) {
	var s domain.Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return domain.Settings{}, err
	}
	if err := validator.New().Struct(s); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}
