package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/myblog/configs"
	"github.com/maheshrc27/myblog/pkg/utils"
	"github.com/rs/zerolog"
)

type AuthMiddleware struct {
	cfg config.Config
	log zerolog.Logger
}

func NewAuthMiddleware(cfg config.Config, log zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg, log: log}
}

// AuthMiddleware resolves the session cookie to a user id stored in
// c.Locals("user_id").
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing session cookie",
			})
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil {
			c.Cookie(&fiber.Cookie{
				Name:   m.cfg.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1, // Delete cookie
			})

			m.log.Debug().Err(err).Msg("token validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		if userID, err := strconv.ParseInt(claims.UserID, 10, 64); err != nil || userID <= 0 {
			m.log.Warn().Str("claim", claims.UserID).Msg("token carries a malformed user id")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}
