package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"rest-planner/domain"
)

const (
	userContextKey         = "rest-planner.user"
	authDurationContextKey = "rest-planner.auth_duration"
)

// BasicAuth authenticates requests against auth and stores the resolved user
// in the echo context.
func BasicAuth(auth Authenticator, realm string, logger *log.Logger) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: realm,
		Validator: func(username, password string, c echo.Context) (bool, error) {
			start := time.Now()
			user, err := auth.Authenticate(username, password)
			c.Set(authDurationContextKey, time.Since(start))
			if err != nil {
				if logger != nil {
					logger.WithFields(log.Fields{
						"username": username,
						"remote":   c.RealIP(),
					}).Debug("basic auth rejected")
				}
				return false, nil
			}
			c.Set(userContextKey, user)
			return true, nil
		},
	})
}

func userFromContext(c echo.Context) (domain.User, bool) {
	u, ok := c.Get(userContextKey).(domain.User)
	return u, ok
}

func authDurationFromContext(c echo.Context) time.Duration {
	d, _ := c.Get(authDurationContextKey).(time.Duration)
	return d
}
