package middleware

import (
	"errors"
	"log"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// SilentLogger logs requests but drops the ones that failed because the
// client hung up mid-response.
func SilentLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}

		c.Next()

		for _, e := range c.Errors {
			if clientGone(e.Err) {
				return
			}
		}

		log.Printf("[GIN] %3d | %13v | %15s | %-7s %q",
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

func clientGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
