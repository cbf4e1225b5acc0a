package services

import (
	"context"
	"errors"
	"fmt"

	"dietvision/logger"
	"dietvision/models"
	"dietvision/utils"

	"go.uber.org/zap"
)

// ImageStore keeps a copy of an uploaded photo and returns where it lives.
type ImageStore interface {
	Upload(ctx context.Context, prefix string, data []byte) (string, error)
}

type FoodService struct {
	classifier Classifier
	nutrition  *NutritionService
	meals      *MealService
	images     ImageStore
}

// NewFoodService wires the analysis pipeline. images may be nil.
func NewFoodService(classifier Classifier, nutrition *NutritionService, meals *MealService, images ImageStore) *FoodService {
	return &FoodService{classifier: classifier, nutrition: nutrition, meals: meals, images: images}
}

// Analyze classifies a meal photo, attaches nutrition and warnings, logs the
// meal and remembers the result on the session.
func (s *FoodService) Analyze(ctx context.Context, sess *Session, image []byte) (*models.Analysis, error) {
	pred, err := s.classifier.Classify(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("classify image: %w", err)
	}

	facts, err := s.nutrition.Lookup(ctx, pred.FoodName)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if facts == nil {
		logger.Info("no nutrition data for prediction", zap.String("food", pred.FoodName))
	}

	actx := utils.AssessmentContext{HealthConditions: sess.HealthConditions()}
	if prefs := sess.CurrentPreferences(); prefs != nil {
		actx.Age = prefs.AgeOrDefault()
	}
	analysis := models.Analysis{
		Prediction: *pred,
		Nutrition:  facts,
		Warnings:   utils.AssessMeal(facts, actx),
	}

	if s.images != nil {
		url, err := s.images.Upload(ctx, sess.Email, image)
		if err != nil {
			logger.Warn("meal photo upload failed", zap.String("email", sess.Email), zap.Error(err))
		} else {
			analysis.ImageURL = url
		}
	}

	meal, err := s.meals.Record(ctx, sess.Email, analysis.Prediction, facts, analysis.ImageURL)
	if err != nil {
		logger.Error("meal log failed", zap.String("email", sess.Email), zap.Error(err))
	} else {
		analysis.MealID = meal.ID
	}

	sess.SetLastAnalysis(analysis)
	return &analysis, nil
}

func (s *FoodService) Nutrition(ctx context.Context, name string) (*models.NutritionFacts, error) {
	return s.nutrition.Lookup(ctx, name)
}
