package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"salin-system/internal/scope"
	"salin-system/internal/utils"
)

const (
	ContextUserID = "user_id"
	ContextScope  = "access_scope"
)

// JWTAuth validates the bearer token and stores the caller id. An expired
// token returns a distinct code so the client can refresh once and retry.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing bearer token",
				"error":   "UNAUTHORIZED",
			})
			return
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
				"error":   "TOKEN_INVALID",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// AccessScope resolves the caller's visibility scope exactly once per
// request, right after authentication. Handlers read the stored value and
// never re-derive scoping mid-pipeline.
func AccessScope(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		sc, err := scope.ForUser(c.Request.Context(), db, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "Could not resolve access scope",
				"error":   "SCOPE_UNAVAILABLE",
			})
			return
		}
		c.Set(ContextScope, sc)
		c.Next()
	}
}

// ScopeFrom reads the request's resolved scope.
func ScopeFrom(c *gin.Context) scope.AccessScope {
	v, _ := c.Get(ContextScope)
	sc, _ := v.(scope.AccessScope)
	return sc
}
