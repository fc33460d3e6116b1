package api

import (
	"log"
	"net/http"
	"time"

	"chordkv/internal/ring"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger is a Gin middleware that logs every request with method, path,
// client IP, status code, latency and the request id set by RequestID —
// the only logging contract spec.md §7 mentions ("free-form stderr
// diagnostics").
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[%s] %s %s | %d | %s | %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(start),
			c.GetString("request_id"),
		)
	}
}

// Recovery catches a panic in any later handler, logs it, and answers 500
// with a JSON error body, following the teacher's own middleware shape.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC recovered: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// RequestID stamps every inbound request with a short-lived identifier,
// surfaced both in the response header and in the access log line. Each
// peer assigns its own id; outbound forwards to neighbors do not carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Writer.Header().Set("X-Request-Id", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// exemptFromCrash lists the paths that must keep responding normally while
// a peer is simulated-crashed (spec.md §4.4: "/sim-recover, /sim-crash,
// and /node-info"). Every other path gets an unconditional 500 while the
// crash flag is set.
var exemptFromCrash = map[string]bool{
	"/node-info":   true,
	"/sim-crash":   true,
	"/sim-recover": true,
}

// CrashGuard makes a crashed peer behave like an unreachable black hole,
// per spec.md §3's crash flag semantics.
func CrashGuard(peer *ring.Peer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if peer.Crashed() && !exemptFromCrash[c.Request.URL.Path] {
			c.AbortWithStatus(http.StatusInternalServerError)
			c.String(http.StatusInternalServerError, "I have sim-crashed")
			return
		}
		c.Next()
	}
}
