package models

import (
	"time"

	"gorm.io/gorm"
)

// MealLog is one analysed meal in a user's history.
type MealLog struct {
	gorm.Model
	Email      string    `gorm:"index;not null" json:"email"`
	FoodName   string    `gorm:"not null" json:"food_name"`
	Confidence float64   `json:"confidence"`
	Calories   float64   `json:"calories"`
	Protein    float64   `json:"protein"`
	Carbs      float64   `json:"carbs"`
	Fat        float64   `json:"fat"`
	Fiber      float64   `json:"fiber"`
	Sugar      float64   `json:"sugar"`
	ImageURL   string    `json:"image_url,omitempty"`
	AteAt      time.Time `gorm:"index" json:"ate_at"`
}
