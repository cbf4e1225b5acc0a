package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dietvision/logger"
	"dietvision/models"
	"dietvision/storage"

	"go.uber.org/zap"
)

const defaultRating = 4

// Notifier delivers a copy of a feedback entry somewhere a human will read it.
type Notifier interface {
	NotifyFeedback(ctx context.Context, fb models.Feedback) error
}

type FeedbackService struct {
	store    *storage.KeyedStore[models.Feedback]
	notifier Notifier
	now      func() time.Time
}

// NewFeedbackService builds the service. notifier may be nil.
func NewFeedbackService(store *storage.KeyedStore[models.Feedback], notifier Notifier) *FeedbackService {
	return &FeedbackService{store: store, notifier: notifier, now: time.Now}
}

// Submit appends one feedback row. Every submission is kept, including repeats
// from the same user.
func (s *FeedbackService) Submit(ctx context.Context, email string, rating int, text string) (models.Feedback, storage.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Feedback{}, storage.Result{}, fmt.Errorf("%w: feedback text is required", ErrInvalidInput)
	}
	if rating == 0 {
		rating = defaultRating
	}
	if rating < 1 || rating > 5 {
		return models.Feedback{}, storage.Result{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	fb := models.Feedback{
		Timestamp: s.now().Truncate(time.Second),
		Email:     email,
		Rating:    rating,
		Text:      text,
	}
	res := s.store.Append(ctx, fb)
	if res.OK && s.notifier != nil {
		if err := s.notifier.NotifyFeedback(ctx, fb); err != nil {
			logger.Warn("feedback notification failed", zap.String("email", email), zap.Error(err))
		}
	}
	return fb, res, nil
}
