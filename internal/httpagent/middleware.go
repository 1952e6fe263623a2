package httpagent

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body returned on every failure path,
// matching the teacher's flat {success,code,error} envelope rather
// than a generic wrapper type.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

func errorResponse(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Success: false, Code: code, Error: msg})
}

// bearerAuth checks the Authorization header against token, rejecting
// with 401 on mismatch or absence.
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
