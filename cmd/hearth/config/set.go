package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hearthchat/hearth/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .hearth/ directory. Keys use dotted notation matching
the TOML section structure.

Valid keys:
  ollama.target, ollama.model,
  llama_server.target, llama_server.model,
  client.backend, client.chat,
  memory.enabled, memory.max_context_messages, memory.semantic_search_limit,
  memory.max_scan_messages, memory.fact_cache_enabled,
  facts.categories, facts.custom_keywords,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  vector_store.provider, vector_store.target,
  api.listen

Examples:
  hearth config set ollama.model gemma3:latest
  hearth config set client.backend llama-server
  hearth config set embedding.dimensions 768`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(args[0], args[1], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if target := cfger.GetTarget(); target != "" {
		fmt.Printf("Using config file: %s\n\n", target)
	} else {
		fmt.Print("No config file found. Using defaults.\n\n")
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Printf("Set %s = %q\n", key, value)
	return nil
}
