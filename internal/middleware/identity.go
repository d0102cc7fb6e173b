package middleware

// identity.go holds the context key and accessor shared by the middleware
// and the handlers for the authenticated member profile.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-access-control/internal/model"
)

const memberContextKey = "member"

// SetMember stores the authenticated member profile on the request
// context.  MemberAuth is the only production caller.
func SetMember(c echo.Context, m model.Member) {
	c.Set(memberContextKey, m)
}

// MemberFrom extracts the authenticated member stored by MemberAuth.  The
// second return is false when no member is present, which on protected
// routes indicates a middleware ordering bug rather than a user error.
func MemberFrom(c echo.Context) (model.Member, bool) {
	m, ok := c.Get(memberContextKey).(model.Member)
	return m, ok
}
