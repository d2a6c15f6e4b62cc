package chatscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearthchat/hearth/pkg/config"
	"github.com/hearthchat/hearth/pkg/dotdir"
)

const renameLongDesc string = `Rename a saved chat.

Moves the chat folder and its conversation file to the new name. Fails if
a chat with the new name already exists.

Examples:
  hearth chats rename default diary`

const renameShortDesc string = "Rename a saved chat"

type renameCommander struct {
	backend   string
	configDir string
}

func newRenameCmd() *cobra.Command {
	cmder := &renameCommander{}

	cmd := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: renameShortDesc,
		Long:  renameLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagBackend})
			cmder.backend = v.GetString("client.backend")

			return cmder.run(args[0], args[1])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)

	return cmd
}

func (c *renameCommander) run(oldName, newName string) error {
	chats, err := dotdir.NewManager().NewChats(c.backend, c.configDir)
	if err != nil {
		return fmt.Errorf("resolving chat directory: %w", err)
	}

	if err := chats.Rename(oldName, newName); err != nil {
		return err
	}

	fmt.Printf("Renamed chat %q to %q\n", oldName, newName)
	return nil
}
