// Package hearthcmder
package hearthcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/hearthchat/hearth/cmd/hearth/chat"
	chatscmder "github.com/hearthchat/hearth/cmd/hearth/chats"
	configcmder "github.com/hearthchat/hearth/cmd/hearth/config"
	factscmder "github.com/hearthchat/hearth/cmd/hearth/facts"
	searchcmder "github.com/hearthchat/hearth/cmd/hearth/search"
	servecmder "github.com/hearthchat/hearth/cmd/hearth/serve"
	statscmder "github.com/hearthchat/hearth/cmd/hearth/stats"
	versioncmder "github.com/hearthchat/hearth/cmd/version"
)

const hearthLongDesc string = `Hearth is a terminal chat client for local LLM servers
with conversation memory.

Chat with a local model:
  hearth chat                Interactive chat with memory and personal facts
  hearth chats list          List saved chats for a backend
  hearth search <query>      Semantic search over the active chat

Inspect memory:
  hearth stats               Message counts for the active chat
  hearth facts               Personal facts extracted from the conversation

Run services:
  hearth serve               Run the local memory API server`

const hearthShortDesc string = "Hearth - local LLM chat with conversation memory"

func NewHearthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hearth",
		Short: hearthShortDesc,
		Long:  hearthLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Path to the .hearth/ directory (default: ./.hearth or ~/.hearth)")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(chatscmder.NewChatsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(factscmder.NewFactsCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
