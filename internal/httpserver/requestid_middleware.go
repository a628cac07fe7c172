package httpserver

import (
	"github.com/gin-gonic/gin"

	"tableease/pkg/requestid"
)

// RequestIDMiddleware accepts a caller-supplied request id or mints
// one, echoes it in the response and threads it through the request
// context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if id == "" {
			id = requestid.Generate()
		}

		c.Request = c.Request.WithContext(requestid.WithContext(c.Request.Context(), id))
		c.Writer.Header().Set(requestid.Header, id)
		c.Next()
	}
}
