package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"dietvision/models"

	"gorm.io/gorm"
)

const recentMealCount = 5

type MealService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db, now: time.Now}
}

// Record stores one analysed meal for email.
func (s *MealService) Record(ctx context.Context, email string, pred models.Prediction, facts *models.NutritionFacts, imageURL string) (*models.MealLog, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	meal := &models.MealLog{
		Email:      email,
		FoodName:   pred.FoodName,
		Confidence: pred.Confidence,
		ImageURL:   imageURL,
		AteAt:      s.now(),
	}
	if facts != nil {
		meal.Calories = facts.Calories
		meal.Protein = facts.Protein
		meal.Carbs = facts.Carbs
		meal.Fat = facts.Fat
		meal.Fiber = facts.Fiber
		meal.Sugar = facts.Sugar
	}
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, fmt.Errorf("record meal: %w", err)
	}
	return meal, nil
}

// List returns the user's meals, newest first.
func (s *MealService) List(ctx context.Context, email string) ([]models.MealLog, error) {
	var meals []models.MealLog
	err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Order("ate_at DESC").
		Order("id DESC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return meals, nil
}

type MacroTotals struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type DailyCalories struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
}

type Dashboard struct {
	HasData            bool             `json:"has_data"`
	TotalCalories      float64          `json:"total_calories"`
	AvgProtein         float64          `json:"avg_protein"`
	MealsLogged        int              `json:"meals_logged"`
	AvgCaloriesPerMeal float64          `json:"avg_calories_per_meal"`
	Macros             MacroTotals      `json:"macros"`
	CaloriesPerDay     []DailyCalories  `json:"calories_per_day"`
	RecentMeals        []models.MealLog `json:"recent_meals"`
}

func (s *MealService) Dashboard(ctx context.Context, email string) (*Dashboard, error) {
	meals, err := s.List(ctx, email)
	if err != nil {
		return nil, err
	}
	return summarize(meals), nil
}

// summarize expects meals newest first.
func summarize(meals []models.MealLog) *Dashboard {
	d := &Dashboard{
		CaloriesPerDay: []DailyCalories{},
		RecentMeals:    []models.MealLog{},
	}
	if len(meals) == 0 {
		return d
	}

	byDay := map[string]float64{}
	var days []string
	for _, m := range meals {
		d.TotalCalories += m.Calories
		d.Macros.Protein += m.Protein
		d.Macros.Carbs += m.Carbs
		d.Macros.Fat += m.Fat

		day := m.AteAt.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day] += m.Calories
	}

	n := float64(len(meals))
	d.HasData = true
	d.MealsLogged = len(meals)
	d.AvgProtein = round1(d.Macros.Protein / n)
	d.AvgCaloriesPerMeal = math.Round(d.TotalCalories / n)

	// oldest day first
	for i := len(days) - 1; i >= 0; i-- {
		d.CaloriesPerDay = append(d.CaloriesPerDay, DailyCalories{Date: days[i], Calories: byDay[days[i]]})
	}
	d.RecentMeals = meals[:min(recentMealCount, len(meals))]
	return d
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
