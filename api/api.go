package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hearthchat/hearth/pkg/memory"
)

// Server is the HTTP API over a session manager.
type Server struct {
	config  Config
	manager *memory.Manager
	logger  *zap.Logger
	app     *fiber.App
}

// NewServer creates a new API server. The manager is injected so the API
// shares sessions with the chat loop rather than owning its own.
func NewServer(config Config, manager *memory.Manager, logger *zap.Logger) *Server {
	if config.DefaultBackend == "" {
		config.DefaultBackend = memory.BackendOllama
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		manager: manager,
		logger:  logger,
		app:     app,
	}

	app.Get("/healthz", s.handleHealthz)
	app.Get("/api/v1/stats", s.handleStats)
	app.Get("/api/v1/search", s.handleSearch)
	app.Get("/api/v1/facts", s.handleFacts)

	return s
}

// App exposes the underlying fiber app, used by tests to drive requests
// without binding a port.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
