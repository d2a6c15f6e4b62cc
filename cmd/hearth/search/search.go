// Package searchcmder provides the search command for semantic retrieval
// over a chat's conversation memory.
package searchcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearthchat/hearth/pkg/config"
	"github.com/hearthchat/hearth/pkg/logger"
	memoryutils "github.com/hearthchat/hearth/pkg/memory/utils"
	"github.com/hearthchat/hearth/pkg/utils"
)

const searchLongDesc string = `Semantic search over the active chat.

Embeds the query through the configured embedding endpoint and ranks the
chat's embedded messages by cosine similarity. Messages stored without an
embedding are never returned.

Examples:
  hearth search favorite food
  hearth search --search-limit 10 "weekend plans"`

const searchShortDesc string = "Semantic search over the active chat"

type searchCommander struct {
	backend   string
	chatName  string
	limit     int
	configDir string
	debug     bool
}

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
				config.FlagBackend, config.FlagChat, config.FlagSearchLimit,
			})
			cmder.backend = v.GetString("client.backend")
			cmder.chatName = v.GetString("client.chat")
			cmder.limit = v.GetInt("memory.semantic_search_limit")

			return cmder.run(cmd.Context(), v, strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagChat, &cmder.chatName)
	config.AddIntFlag(cmd, config.Flags, config.FlagSearchLimit, &cmder.limit)

	return cmd
}

func (c *searchCommander) run(ctx context.Context, v *viper.Viper, query string) error {
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

	sess, err := mgr.Session(c.backend)
	if err != nil {
		return err
	}

	hits := sess.Store().Search(ctx, query, c.limit)
	if len(hits) == 0 {
		fmt.Println("No matching messages. Is the embedding endpoint reachable?")
		return nil
	}

	fmt.Printf("Top %d matches for %q:\n\n", len(hits), query)
	for i, hit := range hits {
		fmt.Printf("  %d. [%s] %.3f  %s\n",
			i+1, hit.Message.Role, hit.Score, utils.Truncate(hit.Message.Content, 72))
	}

	return nil
}
