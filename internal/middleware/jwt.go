package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// MemberAuth returns an Echo middleware that validates the Bearer token
// issued by the identity collaborator and injects the member profile it
// carries into the request context.  The engine never issues these
// tokens; it only verifies the shared-secret signature and reads the
// claims: sub (member id), gender, tier and role.  A missing or
// unparseable gender claim becomes "unspecified" — the eligibility
// validator handles that case explicitly rather than the middleware
// guessing.
func MemberAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			member := model.Member{
				ID:     claimUint64(claims, "sub"),
				Gender: claimGender(claims),
				Tier:   claimString(claims, "tier"),
				Role:   claimString(claims, "role"),
			}
			if member.ID == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing subject"})
			}
			SetMember(c, member)
			return next(c)
		}
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func claimUint64(claims jwt.MapClaims, key string) uint64 {
	switch v := claims[key].(type) {
	case float64:
		if v > 0 {
			return uint64(v)
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func claimGender(claims jwt.MapClaims) model.Gender {
	switch model.Gender(claimString(claims, "gender")) {
	case model.GenderA:
		return model.GenderA
	case model.GenderB:
		return model.GenderB
	default:
		return model.GenderUnspecified
	}
}
