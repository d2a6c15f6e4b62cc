package chatscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearthchat/hearth/pkg/config"
	"github.com/hearthchat/hearth/pkg/dotdir"
)

const newLongDesc string = `Start a fresh chat under the given name.

Creates the chat folder if needed and removes any existing conversation
file under the same name. The facts sidecar and media folders are left
untouched.

Examples:
  hearth chats new project-notes
  hearth chats new scratch --backend llama-server`

const newShortDesc string = "Start a fresh chat"

type newCommander struct {
	backend   string
	configDir string
}

func newNewCmd() *cobra.Command {
	cmder := &newCommander{}

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: newShortDesc,
		Long:  newLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagBackend})
			cmder.backend = v.GetString("client.backend")

			return cmder.run(args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)

	return cmd
}

func (c *newCommander) run(name string) error {
	chats, err := dotdir.NewManager().NewChats(c.backend, c.configDir)
	if err != nil {
		return fmt.Errorf("resolving chat directory: %w", err)
	}

	dir, err := chats.New(name)
	if err != nil {
		return err
	}

	fmt.Printf("Created chat %q at %s\n", name, dir)
	return nil
}
