package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/papertriage/papertriage/internal/config"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set papertriage configuration",
		Long:  "Inspect or modify papertriage configuration values. Similar to git config.",
	}

	cmd.AddCommand(configGetCmd())
	cmd.AddCommand(configSetCmd())
	cmd.AddCommand(configListCmd())
	cmd.AddCommand(configPathCmd())

	return cmd
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			val, err := config.GetConfigValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the global config file.

List values are comma separated:
  papertriage config set refresh_sources arxiv,pubmed
  papertriage config set tui.hide_scores true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigKey(config.GlobalConfigPath(), args[0], args[1])
		},
	}
}

func configListCmd() *cobra.Command {
	var showOrigin bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GlobalConfigPath()
			cfg, err := config.LoadGlobalFrom(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			raw, err := config.LoadRawTOML(path)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			kvs := config.ListConfigKeys(cfg, raw)
			if showOrigin {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, kv := range kvs {
					fmt.Fprintf(w, "%s\t%s\t%s\n", kv.Origin, kv.Key, kv.Value)
				}
				return w.Flush()
			}
			for _, kv := range kvs {
				fmt.Fprintf(out, "%s=%s\n", kv.Key, kv.Value)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showOrigin, "show-origin", false, "show where each value comes from (config/default)")
	return cmd
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.GlobalConfigPath())
		},
	}
}

// setConfigKey sets a key in a TOML file using raw map manipulation
// to avoid writing default values for every field.
func setConfigKey(path, key, value string) error {
	raw := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// Validate against the file's current contents so cross-field checks
	// see the values that will actually be loaded.
	validationCfg, err := config.LoadGlobalFrom(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := config.SetConfigValue(validationCfg, key, value); err != nil {
		return err
	}
	typed, err := config.TypedValue(validationCfg, key)
	if err != nil {
		return err
	}
	setRawMapKey(raw, key, typed)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// Preserve original file permissions if the file exists
	var mode os.FileMode = 0644
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	// Write to temp file and rename for atomicity
	f, err := os.CreateTemp(filepath.Dir(path), ".papertriage-config-*.toml")
	if err != nil {
		return err
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath) // no-op after successful rename

	if err := toml.NewEncoder(f).Encode(raw); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// setRawMapKey sets a value in a nested map using dot-separated keys.
func setRawMapKey(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	current := m
	for _, part := range parts[:len(parts)-1] {
		sub, ok := current[part].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			current[part] = sub
		}
		current = sub
	}
	current[parts[len(parts)-1]] = value
}
