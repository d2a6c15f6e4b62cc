// Package configcmder provides the config command for managing persistent
// hearth configuration stored in the .hearth/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent hearth configuration.

Configuration is stored as config.toml in the .hearth/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  ollama.target, ollama.model,
  llama_server.target, llama_server.model,
  client.backend, client.chat,
  memory.enabled, memory.max_context_messages, memory.semantic_search_limit,
  memory.max_scan_messages, memory.fact_cache_enabled,
  facts.categories, facts.custom_keywords,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  vector_store.provider, vector_store.target,
  api.listen

Use subcommands to get, set, or list configuration values:
  hearth config set <key> <value>   Set a configuration value
  hearth config get <key>           Get a configuration value
  hearth config list                List all configuration values

Examples:
  hearth config set ollama.model gemma3:latest
  hearth config set memory.enabled true
  hearth config get embedding.model
  hearth config list`

const configShortDesc string = "Manage persistent hearth configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
