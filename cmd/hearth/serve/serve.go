// Package servecmder provides the serve command for running the local
// memory API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hearthchat/hearth/api"
	"github.com/hearthchat/hearth/pkg/config"
	"github.com/hearthchat/hearth/pkg/dotdir"
	"github.com/hearthchat/hearth/pkg/logger"
	memoryutils "github.com/hearthchat/hearth/pkg/memory/utils"
)

const serveLongDesc string = `Run the local hearth API server.

Exposes the conversation memory of the active chat over HTTP:
  GET /healthz             Health check
  GET /api/v1/stats        Message counts
  GET /api/v1/search       Semantic search (?q=...&limit=...)
  GET /api/v1/facts        Extracted personal facts

Requests can name a backend with ?backend=; the configured client backend
is used otherwise.

Examples:
  hearth serve
  hearth serve --api-listen :9099`

const serveShortDesc string = "Run the local hearth API server"

type serveCommander struct {
	listen    string
	backend   string
	chatName  string
	configDir string
	debug     bool

	logger *zap.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
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
				config.FlagAPIListen, config.FlagBackend, config.FlagChat,
			})
			cmder.listen = v.GetString("api.listen")
			cmder.backend = v.GetString("client.backend")
			cmder.chatName = v.GetString("client.chat")

			return cmder.run(cmd.Context(), v)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagChat, &cmder.chatName)

	return cmd
}

func (c *serveCommander) run(ctx context.Context, v *viper.Viper) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	// Pretty logs on stdout, JSON to .hearth/hearth.log for later inspection.
	slogger := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))
	if target, err := dotdir.NewManager().Target(c.configDir); err == nil {
		logFile, err := os.OpenFile(filepath.Join(target, "hearth.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer logFile.Close()
			slogger = logger.Multi(
				slogger,
				logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(logFile)),
			)
		}
	}

	mgr := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		Viper:       v,
		DataDir:     c.configDir,
		Logger:      slogger,
		IndexLogger: c.logger,
	})
	defer mgr.Close()

	// Serve the saved conversation of the configured chat.
	if err := mgr.SwitchChat(ctx, c.backend, c.chatName); err != nil {
		c.logger.Warn("could not load saved chat, serving empty session",
			zap.String("backend", c.backend),
			zap.String("chat", c.chatName),
			zap.Error(err),
		)
	}

	server := api.NewServer(api.Config{
		ListenAddr:     c.listen,
		DefaultBackend: c.backend,
	}, mgr, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
