// Package factscmder provides the facts command for displaying personal
// facts extracted from a chat's conversation.
package factscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearthchat/hearth/pkg/config"
	"github.com/hearthchat/hearth/pkg/logger"
	memoryutils "github.com/hearthchat/hearth/pkg/memory/utils"
)

const factsLongDesc string = `Show personal facts extracted from the active chat.

Scans the chat's user messages for category keywords (name, job, pet,
family, location, age, and any custom keywords) and prints the extracted
facts. When the fact cache is enabled the facts.json sidecar is consulted
first and only re-scanned if new messages arrived since the last scan.

Examples:
  hearth facts
  hearth facts --backend llama-server --chat diary`

const factsShortDesc string = "Show personal facts extracted from the active chat"

type factsCommander struct {
	backend   string
	chatName  string
	configDir string
	debug     bool
}

func NewFactsCmd() *cobra.Command {
	cmder := &factsCommander{}

	cmd := &cobra.Command{
		Use:   "facts",
		Short: factsShortDesc,
		Long:  factsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagBackend, config.FlagChat, config.FlagScanMessages,
			})
			cmder.backend = v.GetString("client.backend")
			cmder.chatName = v.GetString("client.chat")

			return cmder.run(cmd.Context(), v)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagChat, &cmder.chatName)

	var scanMessages int
	config.AddIntFlag(cmd, config.Flags, config.FlagScanMessages, &scanMessages)

	return cmd
}

func (c *factsCommander) run(ctx context.Context, v *viper.Viper) error {
	slogger := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	mgr := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		Viper:       v,
		DataDir:     c.configDir,
		Logger:      slogger,
		IndexLogger: logger.NewLogger(c.debug),
	})
	defer mgr.Close()

	if err := mgr.SwitchChat(ctx, c.backend, c.chatName); err != nil {
		return fmt.Errorf("loading chat %q: %w", c.chatName, err)
	}

	facts, err := mgr.PersonalFacts(c.backend)
	if err != nil {
		return err
	}

	if facts == "" {
		fmt.Println("No personal facts extracted yet.")
		return nil
	}

	fmt.Println(facts)
	return nil
}
