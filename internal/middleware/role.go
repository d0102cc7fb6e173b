package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Access roles carried in the identity token.  Members scan and manage
// their own waitlist entries; staff additionally drive the waitlist
// promotion primitives.
const (
	RoleMember = "MEMBER"
	RoleStaff  = "STAFF"
)

// RequireRole enforces that the authenticated member carries one of the
// given roles.  It assumes MemberAuth ran earlier in the chain.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			member, ok := MemberFrom(c)
			if !ok || !allowed[member.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
