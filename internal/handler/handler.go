package handler

import (
	"time"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// currentUserID returns the landlord ID placed in the context by the auth middleware
func currentUserID(c echo.Context) uint {
	id, _ := c.Get("user_id").(uint)
	return id
}

// parseDate parses a YYYY-MM-DD request field
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
