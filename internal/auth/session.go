package auth

import (
	"github.com/gin-gonic/gin"
)

// Context keys for request-scoped auth data
const (
	ContextKeySession  = "auth_session"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
)

// DefaultUserID identifies the implicit single user when auth is disabled.
const DefaultUserID = "local"

// Session is the explicit user-context value threaded through every
// controller and adapter call.
type Session struct {
	UserID   string
	Username string
}

// Anonymous reports whether the session carries no authenticated user.
func (s Session) Anonymous() bool {
	return s.UserID == ""
}

// GetSession extracts the request's session from the Gin context. When auth
// is disabled this is the default local session, never an empty one.
func GetSession(c *gin.Context) Session {
	if v, exists := c.Get(ContextKeySession); exists {
		if sess, ok := v.(Session); ok {
			return sess
		}
	}
	return Session{}
}

// SetSession stores the session in the Gin context for downstream handlers.
func SetSession(c *gin.Context, sess Session, authType AuthType) {
	c.Set(ContextKeySession, sess)
	c.Set(ContextKeyAuthType, authType)
}
