package controllers

import (
	"net/http"

	"dietvision/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Meals *services.MealService
}

func NewDashboardController(meals *services.MealService) *DashboardController {
	return &DashboardController{Meals: meals}
}

// GET /dashboard
func (h *DashboardController) Get(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	d, err := h.Meals.Dashboard(c.Request.Context(), sess.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}
