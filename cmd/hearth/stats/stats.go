// Package statscmder provides the stats command for inspecting a chat's
// conversation memory.
package statscmder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearthchat/hearth/pkg/config"
	"github.com/hearthchat/hearth/pkg/dotdir"
	"github.com/hearthchat/hearth/pkg/logger"
	memoryutils "github.com/hearthchat/hearth/pkg/memory/utils"
)

const statsLongDesc string = `Show memory statistics for the active chat.

Loads the chat's conversation file and reports message counts, how many
messages carry embeddings, and the size of the file on disk.

Examples:
  hearth stats
  hearth stats --backend llama-server --chat diary`

const statsShortDesc string = "Show memory statistics for the active chat"

type statsCommander struct {
	backend   string
	chatName  string
	configDir string
	debug     bool
}

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
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
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagBackend, config.FlagChat})
			cmder.backend = v.GetString("client.backend")
			cmder.chatName = v.GetString("client.chat")

			return cmder.run(cmd.Context(), v)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagChat, &cmder.chatName)

	return cmd
}

func (c *statsCommander) run(ctx context.Context, v *viper.Viper) error {
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

	stats, err := mgr.Stats(c.backend)
	if err != nil {
		return err
	}

	sess, err := mgr.Session(c.backend)
	if err != nil {
		return err
	}

	enabled := "disabled"
	if stats.MemoryEnabled {
		enabled = "enabled"
	}

	fmt.Printf("Session:    %s\n", stats.SessionID)
	fmt.Printf("Chat:       %s\n", c.chatName)
	fmt.Printf("Memory:     %s\n", enabled)
	fmt.Printf("Messages:   %s (%d user / %d assistant)\n",
		strconv.Itoa(stats.TotalMessages), stats.UserMessages, stats.AssistantMessages)
	fmt.Printf("Embedded:   %d\n", stats.EmbeddedMessages)
	fmt.Printf("Size:       %s\n", dotdir.FormatSize(sess.Chats().ConversationSize(c.chatName)))

	return nil
}
