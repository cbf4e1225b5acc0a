package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dietvision/models"
	"dietvision/storage"
)

const signInMethodGoogle = "Google OAuth"

// GoogleUser is the subset of the OpenID userinfo response we keep.
type GoogleUser struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type PreferencesInput struct {
	Age                *int     `json:"age"`
	Sex                string   `json:"sex"`
	Country            string   `json:"country"`
	Ethnicity          string   `json:"ethnicity"`
	Cuisine            []string `json:"cuisine"`
	ActivityLevel      string   `json:"activity_level"`
	HealthConditions   []string `json:"health_conditions"`
	Goals              []string `json:"goals"`
	DietaryPreferences []string `json:"dietary_preferences"`
}

func (in PreferencesInput) Validate() error {
	if in.Age != nil && (*in.Age < 1 || *in.Age > 120) {
		return fmt.Errorf("%w: age must be between 1 and 120", ErrInvalidInput)
	}
	return nil
}

type UserService struct {
	profiles *storage.KeyedStore[models.Profile]
	prefs    *storage.KeyedStore[models.Preferences]
	now      func() time.Time
}

func NewUserService(profiles *storage.KeyedStore[models.Profile], prefs *storage.KeyedStore[models.Preferences]) *UserService {
	return &UserService{profiles: profiles, prefs: prefs, now: time.Now}
}

// SyncLogin records a sign-in. Returning users keep their original signup date.
func (s *UserService) SyncLogin(ctx context.Context, u GoogleUser) (models.Profile, storage.Result) {
	now := s.now().Truncate(time.Second)
	first, last := splitName(u.Name)
	p := models.Profile{
		FirstName:    first,
		LastName:     last,
		Email:        u.Email,
		Picture:      u.Picture,
		SignupDate:   now,
		SignInMethod: signInMethodGoogle,
		LastActive:   now,
	}
	if u.Email == "" {
		return p, storage.Result{OK: false, Message: storage.ErrEmptyKey.Error()}
	}
	if existing, ok := s.profiles.Lookup(ctx, u.Email); ok && !existing.SignupDate.IsZero() {
		p.SignupDate = existing.SignupDate
	}
	return p, s.profiles.Upsert(ctx, u.Email, p)
}

func (s *UserService) GetProfile(ctx context.Context, email string) (models.Profile, error) {
	p, ok := s.profiles.Lookup(ctx, email)
	if !ok {
		return models.Profile{}, fmt.Errorf("profile %s: %w", email, ErrNotFound)
	}
	return p, nil
}

func (s *UserService) GetPreferences(ctx context.Context, email string) (models.Preferences, error) {
	p, ok := s.prefs.Lookup(ctx, email)
	if !ok {
		return models.Preferences{}, fmt.Errorf("preferences %s: %w", email, ErrNotFound)
	}
	return p, nil
}

func (s *UserService) SavePreferences(ctx context.Context, email string, in PreferencesInput) (models.Preferences, storage.Result, error) {
	if err := in.Validate(); err != nil {
		return models.Preferences{}, storage.Result{}, err
	}
	p := models.Preferences{
		Email:              email,
		Age:                in.Age,
		Sex:                strings.TrimSpace(in.Sex),
		Country:            strings.TrimSpace(in.Country),
		Ethnicity:          strings.TrimSpace(in.Ethnicity),
		Cuisine:            cleanList(in.Cuisine),
		ActivityLevel:      strings.TrimSpace(in.ActivityLevel),
		HealthConditions:   cleanList(in.HealthConditions),
		Goals:              cleanList(in.Goals),
		DietaryPreferences: cleanList(in.DietaryPreferences),
		UpdatedAt:          s.now().Truncate(time.Second),
	}
	return p, s.prefs.Upsert(ctx, email, p), nil
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	first, last, _ = strings.Cut(full, " ")
	return first, strings.TrimSpace(last)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
