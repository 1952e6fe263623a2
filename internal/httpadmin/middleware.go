package httpadmin

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse matches the agent surface's flat error envelope so
// both HTTP APIs behave identically from a client's perspective.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

func errorResponse(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Success: false, Code: code, Error: msg})
}

// bearerAuth checks the Authorization header against the single admin
// token, a deliberate simplification of the teacher's OIDC/session/
// tenant stack since the admin surface here has exactly one caller
// class: operators holding API_ACCESS_TOKEN.
func bearerAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) || strings.TrimPrefix(header, prefix) != token {
			return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
		}
		return c.Next()
	}
}
