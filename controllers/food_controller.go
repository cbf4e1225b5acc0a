package controllers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"dietvision/logger"
	"dietvision/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImageBytes = 10 << 20

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type FoodController struct {
	Svc *services.FoodService
}

func NewFoodController(svc *services.FoodService) *FoodController {
	return &FoodController{Svc: svc}
}

// POST /food/analyze (multipart, field "image")
func (h *FoodController) Analyze(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if !allowedImageExt[strings.ToLower(filepath.Ext(fh.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be jpg, jpeg or png"})
		return
	}
	if fh.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image must be 10 MB or smaller"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}

	analysis, err := h.Svc.Analyze(c.Request.Context(), sess, data)
	if err != nil {
		if errors.Is(err, services.ErrNoPrediction) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No predictions returned."})
			return
		}
		logger.Error("meal analysis failed", zap.String("email", sess.Email), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "prediction failed"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// GET /food/nutrition?name=pizza
func (h *FoodController) Nutrition(c *gin.Context) {
	facts, err := h.Svc.Nutrition(c.Request.Context(), c.Query("name"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, facts)
}
