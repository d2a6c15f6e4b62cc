// Package chatscmder provides the chats command for managing saved chats
// in the .hearth/ directory.
package chatscmder

import (
	"github.com/spf13/cobra"
)

const chatsLongDesc string = `Manage saved chats.

Each backend keeps its own chat tree under the .hearth/ directory:
  .hearth/chats/<backend>/<name>/<name>.json   conversation file
  .hearth/chats/<backend>/<name>/facts.json    extracted facts sidecar

Use subcommands to list, create, or rename chats:
  hearth chats list                 List saved chats for a backend
  hearth chats new <name>           Start a fresh chat under the given name
  hearth chats rename <old> <new>   Rename a saved chat

Examples:
  hearth chats list
  hearth chats list --backend llama-server
  hearth chats new project-notes
  hearth chats rename default diary`

const chatsShortDesc string = "Manage saved chats"

func NewChatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: chatsShortDesc,
		Long:  chatsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newRenameCmd())

	return cmd
}
