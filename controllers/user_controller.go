package controllers

import (
	"net/http"

	"dietvision/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// GET /user/profile
func (h *UserController) GetProfile(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	if sess.Profile.Email != "" {
		c.JSON(http.StatusOK, sess.Profile)
		return
	}
	profile, err := h.Users.GetProfile(c.Request.Context(), sess.Email)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GET /user/preferences
func (h *UserController) GetPreferences(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	prefs, err := h.Users.GetPreferences(c.Request.Context(), sess.Email)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs, "age": prefs.AgeOrDefault()})
}

// PUT /user/preferences
func (h *UserController) UpdatePreferences(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	var input services.PreferencesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs, res, err := h.Users.SavePreferences(c.Request.Context(), sess.Email, input)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if !res.OK {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Message})
		return
	}
	sess.SetPreferences(prefs)
	c.JSON(http.StatusOK, gin.H{"message": res.Message, "preferences": prefs})
}
