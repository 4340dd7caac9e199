package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in ~/.config/notion/config.yaml.

Keys: ` + strings.Join(config.Keys(), ", ") + `.`,
	Annotations: skipClient,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		values, err := configOutput(cfg)
		if err != nil {
			return err
		}
		if structuredOutputRequested() {
			return printStructured(ctx, values)
		}

		out := stdoutFromContext(ctx)
		fmt.Fprintln(out, "Config:")
		for _, key := range config.Keys() {
			fmt.Fprintf(out, "  %s: %s\n", key, values[key])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := config.Keys()
		if structuredOutputRequested() {
			return printStructured(cmd.Context(), keys)
		}
		out := stdoutFromContext(cmd.Context())
		fmt.Fprintln(out, "Supported keys:")
		for _, key := range keys {
			fmt.Fprintf(out, "  %s\n", key)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if structuredOutputRequested() {
			return printStructured(cmd.Context(), map[string]string{"path": path})
		}
		fmt.Fprintln(stdoutFromContext(cmd.Context()), path)
		return nil
	},
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	return config.DefaultConfigPath()
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])
	if value == "" {
		return fmt.Errorf("value for %s is empty (use 'notion config unset %s')", key, key)
	}
	if err := updateConfig(key, value); err != nil {
		return err
	}

	if structuredOutputRequested() {
		if key == "token" {
			value = maskToken(value)
		}
		return printStructured(cmd.Context(), map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Fprintf(stdoutFromContext(cmd.Context()), "Updated %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	if err := updateConfig(key, ""); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(cmd.Context(), map[string]string{
			"status": "unset",
			"key":    key,
		})
	}
	fmt.Fprintf(stdoutFromContext(cmd.Context()), "Unset %s\n", key)
	return nil
}

// updateConfig loads the config file, sets key and writes it back. An
// empty value clears the key.
func updateConfig(key, value string) error {
	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	path, err := configPath()
	if err != nil {
		return err
	}
	return cfg.Save(path)
}

func configOutput(cfg *config.Config) (map[string]string, error) {
	values := make(map[string]string, len(config.Keys()))
	for _, key := range config.Keys() {
		v, err := cfg.Get(key)
		if err != nil {
			return nil, err
		}
		if key == "token" {
			v = maskToken(v)
		}
		values[key] = v
	}
	return values, nil
}
