package chatscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearthchat/hearth/pkg/config"
	"github.com/hearthchat/hearth/pkg/dotdir"
)

const listLongDesc string = `List saved chats for a backend.

Shows every chat folder under the backend's chat tree together with the
size of its conversation file.

Examples:
  hearth chats list
  hearth chats list --backend llama-server`

const listShortDesc string = "List saved chats"

type listCommander struct {
	backend   string
	configDir string
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagBackend})
			cmder.backend = v.GetString("client.backend")

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)

	return cmd
}

func (c *listCommander) run() error {
	chats, err := dotdir.NewManager().NewChats(c.backend, c.configDir)
	if err != nil {
		return fmt.Errorf("resolving chat directory: %w", err)
	}

	names, err := chats.List()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Printf("No saved chats for backend %q.\n", c.backend)
		return nil
	}

	fmt.Printf("Saved chats for backend %q:\n\n", c.backend)
	for _, name := range names {
		fmt.Printf("  %s  (%s)\n", name, dotdir.FormatSize(chats.ConversationSize(name)))
	}

	return nil
}
