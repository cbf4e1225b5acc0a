package controllers

import (
	"net/http"

	"dietvision/services"

	"github.com/gin-gonic/gin"
)

type FeedbackInput struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

type FeedbackController struct {
	Svc *services.FeedbackService
}

func NewFeedbackController(svc *services.FeedbackService) *FeedbackController {
	return &FeedbackController{Svc: svc}
}

// POST /feedback
func (h *FeedbackController) Submit(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	var input FeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fb, res, err := h.Svc.Submit(c.Request.Context(), sess.Email, input.Rating, input.Feedback)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if !res.OK {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Message})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": res.Message, "feedback": fb})
}
