package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hearthchat/hearth/pkg/memory"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SearchResult is one semantic search hit in the API response.
type SearchResult struct {
	Role    string  `json:"role"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// FactsResponse carries the extracted personal facts block.
type FactsResponse struct {
	Backend string `json:"backend"`
	Facts   string `json:"facts"`
}

func (s *Server) backend(c *fiber.Ctx) string {
	if backend := c.Query("backend"); backend != "" {
		return backend
	}
	return s.config.DefaultBackend
}

// handleHealthz returns a simple health check response.
func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleStats returns message counts for a backend's session.
func (s *Server) handleStats(c *fiber.Ctx) error {
	backend := s.backend(c)

	stats, err := s.manager.Stats(backend)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(stats)
}

// handleSearch runs a semantic search over the backend's conversation.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter required"})
	}

	limit := memory.DefaultSemanticSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = parsed
	}

	backend := s.backend(c)
	sess, err := s.manager.Session(backend)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	hits := sess.Store().Search(c.Context(), query, limit)
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{
			Role:    hit.Message.Role,
			Content: hit.Message.Content,
			Score:   hit.Score,
		})
	}

	s.logger.Debug("search served",
		zap.String("backend", backend),
		zap.Int("results", len(results)),
	)

	return c.JSON(fiber.Map{
		"count":   len(results),
		"results": results,
	})
}

// handleFacts returns the backend's extracted personal facts.
func (s *Server) handleFacts(c *fiber.Ctx) error {
	backend := s.backend(c)

	facts, err := s.manager.PersonalFacts(backend)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(FactsResponse{Backend: backend, Facts: facts})
}
