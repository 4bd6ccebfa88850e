package client

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/rzbill/flake/internal/config"
)

// NewConfigCommand constructs the `config` command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration files"}
	cmd.AddCommand(newConfigInitCommand(), newConfigShowCommand())
	return cmd
}

func marshalYAML(cfg cfgpkg.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newConfigInitCommand writes the defaults as YAML to --out or stdout.
func newConfigInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			force, _ := cmd.Flags().GetBool("force")

			b, err := marshalYAML(cfgpkg.Default())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s exists; use --force to overwrite", out)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().String("out", "", "Destination file (default stdout)")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

// newConfigShowCommand prints the effective configuration: file, then
// FLAKE_* environment overrides, validated.
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := LoadEffective(path)
			if err != nil {
				return err
			}
			b, err := marshalYAML(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().String("config", "", "Config file (yaml or json)")
	return cmd
}

// LoadEffective loads path (defaults when empty), applies FLAKE_*
// environment overrides and validates the result.
func LoadEffective(path string) (cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfgpkg.Config{}, err
	}
	return cfg, nil
}
