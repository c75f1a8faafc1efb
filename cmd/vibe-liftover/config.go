package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys are the settings the commands read.
var configKeys = map[string]string{
	"chain":   "default chain file",
	"cache":   "default DuckDB result cache",
	"workers": "worker goroutines for lift",
	"verbose": "debug logging",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-liftover configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-liftover.yaml.",
		Example: `  vibe-liftover config                                   # show all config
  vibe-liftover config set chain ~/chains/hg19ToHg38.over.chain.gz
  vibe-liftover config get chain`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	settings := explicitSettings()
	if len(settings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "# No configuration set. Config file: ~/.vibe-liftover.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// explicitSettings returns the config keys set in the config file, the
// environment, or on the command line. Unchanged flag defaults are left out.
func explicitSettings() map[string]any {
	settings := make(map[string]any)
	for key := range configKeys {
		if viper.IsSet(key) {
			settings[key] = viper.Get(key)
		}
	}
	return settings
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	if _, ok := configKeys[key]; !ok {
		return &usageError{fmt.Errorf("unknown config key %q", key)}
	}

	switch key {
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return &usageError{fmt.Errorf("workers must be a non-negative integer, got %q", value)}
		}
		viper.Set(key, n)
	case "verbose":
		b, err := parseBool(value)
		if err != nil {
			return &usageError{err}
		}
		viper.Set(key, b)
	default:
		viper.Set(key, value)
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".vibe-liftover.yaml")
	}

	// Only explicit settings are written so flag defaults never end up in the file.
	out, err := yaml.Marshal(explicitSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(cfgFile, out, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

func parseBool(value string) (bool, error) {
	switch value {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected true or false, got %q", value)
}
