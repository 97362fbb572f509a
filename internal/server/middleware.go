package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"resumai/internal/common"
	"resumai/internal/entity"
)

const localUser = "current_user"

// requireUser resolves the Bearer session token to an account and stores it
// in the request locals.
func (s *Server) requireUser(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return common.WrapError(common.ErrUnauthorized, "missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return common.WrapError(common.ErrUnauthorized, "invalid authorization header format")
	}

	user, err := s.auth.CurrentUser(c.UserContext(), parts[1])
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.WrapError(common.ErrUnauthorized, "user not found")
		}
		return err
	}
	c.Locals(localUser, user)
	c.SetUserContext(common.WithUserID(c.UserContext(), user.ID))
	return c.Next()
}

func currentUser(c *fiber.Ctx) *entity.User {
	user, _ := c.Locals(localUser).(*entity.User)
	return user
}
