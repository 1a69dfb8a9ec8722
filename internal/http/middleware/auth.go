package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Authorizer is the opaque identity/authorization collaborator: the engine
// only needs "is this call allowed", not how that is decided.
type Authorizer interface {
	Allow(ctx context.Context, method, path string) (bool, error)
}

// AllowAll authorizes every request. It is the default wiring when no
// external authorizer is configured.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string, string) (bool, error) { return true, nil }

// Authorize gates every request through the given Authorizer and answers 403
// with the standard envelope shape on denial.
func Authorize(auth Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := auth.Allow(c.UserContext(), c.Method(), c.Path())
		if err != nil {
			return fiber.ErrInternalServerError
		}
		if !ok {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}
