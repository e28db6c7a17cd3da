package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaffOptions lists who may read staff-only resources
type StaffOptions struct {
	APIKey string
	Users  []string
}

// RequireStaff only lets staff through: callers presenting the API key
// (X-API-Key or a Bearer token) or whose X-User-Id is in the staff list.
func RequireStaff(opts StaffOptions) gin.HandlerFunc {
	staff := make(map[string]struct{}, len(opts.Users))
	for _, u := range opts.Users {
		if u = strings.TrimSpace(u); u != "" {
			staff[u] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if opts.APIKey != "" {
			key := c.GetHeader("X-API-Key")
			if key == "" {
				key = extractToken(c)
			}
			if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(opts.APIKey)) == 1 {
				c.Set(CtxUserID, "api-key")
				c.Next()
				return
			}
		}

		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if _, ok := staff[uid]; ok && uid != "" {
			c.Set(CtxUserID, uid)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "staff access required"})
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
