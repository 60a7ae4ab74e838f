package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
)

// adminClearedKey marks a request that satisfied the admin panel
// shared-secret challenge.
const adminClearedKey = "adminCleared"

// AdminKeyHeader carries the admin panel secret on admin routes.
const AdminKeyHeader = "X-Admin-Key"

// AdminGate verifies the shared-secret challenge server-side and
// records the outcome on the context. It never blocks by itself; the
// services treat the resulting boolean as the second authorization
// factor, so a failed challenge surfaces as Forbidden downstream.
// The secret stays in server config and is compared in constant time.
func AdminGate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(AdminKeyHeader)
		cleared := secret != "" &&
			subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) == 1
		c.Set(adminClearedKey, cleared)
		c.Next()
	}
}

// AdminCleared reports whether the current request passed the gate.
func AdminCleared(c *gin.Context) bool {
	if v, exists := c.Get(adminClearedKey); exists {
		if cleared, ok := v.(bool); ok {
			return cleared
		}
	}
	return false
}
