package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetUserID returns the authenticated user's id, or 0 when the request
// carries none.
func GetUserID(c *fiber.Ctx) int64 {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return userID
}

func redirectToPlans(c *fiber.Ctx, message string) error {
	return c.Redirect("/subscription?message="+url.QueryEscape(message), fiber.StatusFound)
}

// UserKey identifies the caller for rate limiting: the user id when
// authenticated, the client IP otherwise.
func UserKey(c *fiber.Ctx) string {
	if userID := GetUserID(c); userID != 0 {
		return "user:" + strconv.FormatInt(userID, 10)
	}
	return "ip:" + c.IP()
}
