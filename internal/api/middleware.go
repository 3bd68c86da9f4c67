package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/domain"
)

const userKey = "user"

func GinZapMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if u := currentUser(c); u != nil {
			fields = append(fields, zap.String("user", u.ID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}

// BasicAuth authenticates against the user directory and only lets the
// session owner through.
func BasicAuth(users Users, ownerID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c)
			return
		}
		user, err := users.Authenticate(username, password)
		if err != nil {
			zap.L().Error("authenticate", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(err))
			return
		}
		if user == nil {
			unauthorized(c)
			return
		}
		if user.ID != ownerID {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody(domain.ErrForbidden))
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody(domain.ErrForbidden))
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="leaderflow"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(domain.ErrInvalidCredentials))
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
