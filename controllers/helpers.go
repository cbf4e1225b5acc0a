package controllers

import (
	"errors"
	"net/http"

	"dietvision/middlewares"
	"dietvision/services"

	"github.com/gin-gonic/gin"
)

func sessionFromCtx(c *gin.Context) (*services.Session, bool) {
	sess, ok := middlewares.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return sess, ok
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoPrediction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
