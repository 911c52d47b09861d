package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contacts-api/internal/avatar"
	"contacts-api/internal/domain"
	"contacts-api/internal/service"
)

// contextUserKey is where the auth middleware stores the resolved user.
const contextUserKey = "authUser"

const bearerPrefix = "Bearer "

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	verification service.VerificationService
	avatarDir    string
}

func NewHandler(users service.UserService, verification service.VerificationService, avatarDir string) *Handler {
	return &Handler{
		users:        users,
		verification: verification,
		avatarDir:    avatarDir,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.Static(avatar.URLPrefix, h.avatarDir)

	users := router.Group("/api/users")
	{
		users.POST("/signup", h.signup)
		users.POST("/login", h.login)
		users.GET("/logout", h.authRequired(), h.logout)
		users.GET("/current", h.authRequired(), h.getCurrent)
		users.GET("/verify/:verificationToken", h.verifyEmail)
		users.POST("/verify", h.resendVerification)
		users.PATCH("/avatars", h.authRequired(), h.updateAvatar)
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired validates the bearer token and attaches the resolved user to
// the request context. Every failure mode is the same 401.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		user, err := h.users.Authorize(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*domain.User)
	return user
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"email":        user.Email,
			"subscription": user.Subscription,
			"avatarURL":    user.AvatarURL,
		},
	})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnauthorized, "Email or password is wrong")
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	// The payload's code field says 201 while the transport status is 200;
	// the upstream API shipped this mismatch and clients depend on it.
	c.JSON(http.StatusOK, gin.H{
		"status": "created",
		"code":   http.StatusCreated,
		"token":  token,
		"user": gin.H{
			"email":        user.Email,
			"subscription": user.Subscription,
		},
	})
}

func (h *Handler) logout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		abortUnauthorized(c)
		return
	}

	if err := h.users.Logout(c.Request.Context(), user.ID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) getCurrent(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		abortUnauthorized(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":        user.Email,
		"subscription": user.Subscription,
	})
}

func (h *Handler) verifyEmail(c *gin.Context) {
	token := c.Param("verificationToken")

	if err := h.verification.Verify(c.Request.Context(), token); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification successful"})
}

type resendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) resendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "missing required field email")
		return
	}

	if err := h.verification.Resend(c.Request.Context(), req.Email); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

func (h *Handler) updateAvatar(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		abortUnauthorized(c)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		writeError(c, http.StatusBadRequest, "missing avatar file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable avatar file")
		return
	}
	defer file.Close()

	avatarURL, err := h.users.UpdateAvatar(c.Request.Context(), user.ID, file, fileHeader.Filename)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatarURL": avatarURL})
}

// writeServiceError maps domain errors to HTTP statuses. Anything not in the
// taxonomy is a generic 500 with no internals leaked.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailInUse):
		writeError(c, http.StatusConflict, "Email in use")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "Email or password is wrong")
	case errors.Is(err, service.ErrNotAuthorized):
		writeError(c, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrAlreadyVerified):
		writeError(c, http.StatusBadRequest, "Verification has already been passed")
	case errors.Is(err, service.ErrMissingEmail):
		writeError(c, http.StatusBadRequest, "missing required field email")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, avatar.ErrUnsupportedImage):
		writeError(c, http.StatusUnprocessableEntity, "unsupported or corrupt image")
	default:
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "unauthorized",
		"code":    http.StatusUnauthorized,
		"message": "Not authorized",
	})
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  strings.ToLower(http.StatusText(status)),
		"code":    status,
		"message": message,
	})
}
