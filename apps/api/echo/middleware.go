package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
)

// sessionMiddleware rejects revoked tokens and tokens without a usable role,
// then puts the session in the context.
func sessionMiddleware(denylist core.TokenDenylist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Email == "" || (claims.Role != core.RoleTeacher && claims.Role != core.RoleStudent) {
				return errUnauthorized
			}
			if denylist != nil && claims.Id != "" {
				revoked, err := denylist.IsRevoked(ctx.Request().Context(), claims.Id)
				if err != nil {
					return errors.Wrap(err, "checking token revocation")
				}
				if revoked {
					return errSessionRevoked
				}
			}
			ctx.Set(sessionContextKey, claims.Session())
			return next(ctx)
		}
	}
}

// teacherMiddleware restricts a route to teachers.
func teacherMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := getContextSession(ctx)
		if err != nil {
			return err
		}
		if !sess.IsTeacher() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}
