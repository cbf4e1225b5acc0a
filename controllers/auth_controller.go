package controllers

import (
	"context"
	"net/http"

	"dietvision/logger"
	"dietvision/models"
	"dietvision/services"
	"dietvision/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator is the OAuth side of sign-in.
type Authenticator interface {
	Configured() bool
	LoginURL(state string) string
	Authenticate(ctx context.Context, code string) (services.GoogleUser, error)
}

type AuthController struct {
	Auth      Authenticator
	Users     *services.UserService
	Sessions  *services.SessionStore
	JWTSecret string
}

func NewAuthController(auth Authenticator, users *services.UserService, sessions *services.SessionStore, secret string) *AuthController {
	return &AuthController{Auth: auth, Users: users, Sessions: sessions, JWTSecret: secret}
}

// GET /auth/google/login
func (h *AuthController) GoogleLogin(c *gin.Context) {
	if !h.Auth.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	state, err := utils.GenerateRandomToken(24)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start sign-in"})
		return
	}
	h.Sessions.AddState(state)
	c.Redirect(http.StatusFound, h.Auth.LoginURL(state))
}

// GET /auth/google/callback?code=...&state=...
func (h *AuthController) GoogleCallback(c *gin.Context) {
	if e := c.Query("error"); e != "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in cancelled: " + e})
		return
	}
	code, state := c.Query("code"), c.Query("state")
	if code == "" || !h.Sessions.ConsumeState(state) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired sign-in state"})
		return
	}

	ctx := c.Request.Context()
	gu, err := h.Auth.Authenticate(ctx, code)
	if err != nil {
		logger.Warn("google sign-in failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in failed"})
		return
	}

	profile, res := h.Users.SyncLogin(ctx, gu)
	var prefs *models.Preferences
	if p, err := h.Users.GetPreferences(ctx, gu.Email); err == nil {
		prefs = &p
	}
	sess := h.Sessions.Create(profile, prefs)

	token, err := utils.GenerateJWT(h.JWTSecret, sess.Email, sess.ID)
	if err != nil {
		h.Sessions.Delete(sess.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	logger.Info("user signed in", zap.String("email", sess.Email), zap.Bool("profile_saved", res.OK))

	c.JSON(http.StatusOK, gin.H{
		"token":           token,
		"profile":         profile,
		"has_preferences": prefs != nil,
		"store":           res,
	})
}

// POST /auth/logout
func (h *AuthController) Logout(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	h.Sessions.Delete(sess.ID)
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}
