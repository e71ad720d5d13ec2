package handlers

import "github.com/gin-gonic/gin"

// Context keys set by the router middleware.
const (
	UserIDKey    = "user_id"
	RequestIDKey = "request_id"
)

// currentUserID returns the authenticated user. Routes without the auth
// middleware get 0.
func currentUserID(c *gin.Context) uint {
	id, _ := c.Get(UserIDKey)
	userID, _ := id.(uint)
	return userID
}
