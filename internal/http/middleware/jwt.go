package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/nkazemy/subman/internal/service/auth"
)

// CustomerIDFromCtx extracts the authenticated customer id set by JWTMiddleware.
func CustomerIDFromCtx(c echo.Context) (string, bool) {
	v := c.Get("customer_id")
	id, ok := v.(string)
	return id, ok && id != ""
}

// JWTMiddleware authenticates requests using an Authorization: Bearer
// header. The token subject must still resolve to an existing customer.
func JWTMiddleware(authSvc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := strings.TrimSpace(c.Request().Header.Get("Authorization"))
			if header == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization header is missing"})
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization header format"})
			}

			claims, err := authSvc.ParseToken(strings.TrimSpace(parts[1]))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}

			customer, err := authSvc.CustomerByID(c.Request().Context(), claims.Subject)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth error"})
			}
			if customer == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "user specified in token not found"})
			}

			c.Set("customer_id", customer.ID)
			return next(c)
		}
	}
}
