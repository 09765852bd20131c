package devserver

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	userLocalsKey   = "user_id"
)

// requestLogger tags each request with an id, reusing the caller's when sent,
// and logs one line per request.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Get(requestIDHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)

	start := time.Now()
	err := c.Next()
	if err != nil {
		// render now so the logged status is the one sent
		if herr := s.errorHandler(c, err); herr != nil {
			return herr
		}
	}
	s.log.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
		"request_id", id,
	)
	return nil
}

// requireAuth rejects requests without a valid bearer token and stores the
// caller's user id in the context locals.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return fail(c, fiber.StatusUnauthorized, "Authorization header is required")
	}
	claims, err := s.tokens.verify(strings.TrimSpace(raw))
	if err != nil {
		s.log.Debug("token rejected", "err", err)
		return fail(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}
	c.Locals(userLocalsKey, claims.UserID)
	return c.Next()
}

func currentUser(c *fiber.Ctx) uint {
	id, _ := c.Locals(userLocalsKey).(uint)
	return id
}
