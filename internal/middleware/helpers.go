// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// MustGetToken gets the caller's token from context or panics
func MustGetToken(c *gin.Context) string {
	token, exists := c.Get("token")
	if !exists {
		panic("token not found in context")
	}
	return token.(string)
}

// MustGetUserUUID gets the caller's user UUID from context or panics
func MustGetUserUUID(c *gin.Context) string {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		panic("user_uuid not found in context")
	}
	return userUUID.(string)
}

// MustGetTenantUUID gets the caller's tenant UUID from context or panics
func MustGetTenantUUID(c *gin.Context) string {
	tenantUUID, exists := c.Get("tenant_uuid")
	if !exists {
		panic("tenant_uuid not found in context")
	}
	return tenantUUID.(string)
}

// GetACL gets the token ACL from context
func GetACL(c *gin.Context) []string {
	entries, exists := c.Get("acl")
	if !exists {
		return []string{}
	}

	list, ok := entries.([]string)
	if !ok {
		return []string{}
	}

	return list
}
