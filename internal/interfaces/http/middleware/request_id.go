package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDKey = "request_id"

// RequestIDMiddleware tags every request with a unique id, honoring an
// incoming X-Request-ID header. The id is placed both in the gin context
// and in the request's Go context under the string key pkg/logger reads.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)

		ctx := context.WithValue(c.Request.Context(), "request_id", id) //nolint:staticcheck // key shared with pkg/logger
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
