package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

type UserHandler struct {
	BaseHandler
	authService services.AuthService
	userService services.UserService
	cookie      CookieConfig
}

func NewUserHandler(authService services.AuthService, userService services.UserService, cookie CookieConfig, logger utils.Logger) *UserHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		userService: userService,
		cookie:      cookie,
	}
}

// Register creates a student account
// @Router /user/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Registering user")

	if _, err := h.authService.Register(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created Successfully",
	})
}

// Login verifies credentials and sets the session cookie
// @Router /user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token, int(h.authService.TokenTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome back " + resp.User.Name,
		"user":    resp.User,
	})
}

// Logout clears the session cookie
// @Router /user/logout [get]
func (h *UserHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged Out Successfully",
	})
}

// GetProfile returns the current user with their enrolled course ids
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    profile,
	})
}

// UpdateProfile changes the name and/or photo from a multipart form
// @Router /user/profile/update [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	req := &services.UpdateProfileRequest{}
	if name, present := c.GetPostForm("name"); present && strings.TrimSpace(name) != "" {
		req.Name = &name
	}

	photo, closeFn, ok := h.formUpload(c, "profilePhoto")
	if !ok {
		return
	}
	defer closeFn()
	req.Photo = photo

	h.LogRequest(c, "Updating profile", "user_id", userID, "photo", photo != nil)

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully.",
		"user":    user,
	})
}

func (h *UserHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
