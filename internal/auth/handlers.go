package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers exposes the JSON authentication endpoints.
type Handlers struct {
	service        *Service
	sessionManager *SessionManager
}

// NewHandlers creates handlers backed by the given service and sessions.
func NewHandlers(service *Service, sessionManager *SessionManager) *Handlers {
	return &Handlers{
		service:        service,
		sessionManager: sessionManager,
	}
}

// RegisterRoutes mounts the auth endpoints under /api/auth.
func (h *Handlers) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/auth")
	group.POST("/register", h.Register)
	group.POST("/login", h.Login)
	group.POST("/logout", h.Logout)
	group.GET("/me", h.Me)
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new local user account.
func (h *Handlers) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// Login validates credentials and starts a session.
func (h *Handlers) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Same response for unknown user and bad password
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// Logout destroys the current session.
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Failed to destroy session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me returns the current session's user.
func (h *Handlers) Me(c *gin.Context) {
	sess := GetSession(c)
	if sess.Anonymous() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":  sess.UserID,
		"username": sess.Username,
	})
}
