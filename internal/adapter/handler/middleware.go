package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// UserIDHeader is set by the authenticating gateway in front of this service.
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

// RequireUser rejects requests that reach the service without a caller identity.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing user identity"})
			}
			c.Set(userIDKey, uid)
			return next(c)
		}
	}
}

func currentUser(c echo.Context) string {
	uid, _ := c.Get(userIDKey).(string)
	return uid
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.WithFields(logrus.Fields{
				"method":   c.Request().Method,
				"path":     c.Path(),
				"status":   c.Response().Status,
				"duration": time.Since(start).String(),
			}).Info("request")
			return nil
		}
	}
}
