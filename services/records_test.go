package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dietvision/models"

	"github.com/stretchr/testify/require"
)

func TestPreferencesRoundTrip(t *testing.T) {
	s := newLocalStores(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 4, 10, 30, 0, 0, time.Local)

	in := models.Preferences{
		Age:                intPtr(34),
		Sex:                "Female",
		Country:            "Malaysia",
		Cuisine:            []string{"Malay", "Thai"},
		ActivityLevel:      "Moderate",
		HealthConditions:   []string{"Diabetes"},
		Goals:              []string{"Weight Loss", "Muscle Building"},
		DietaryPreferences: []string{},
		UpdatedAt:          at,
	}
	res := s.prefs.Upsert(ctx, "a@x.com", in)
	require.True(t, res.OK)
	require.Equal(t, "saved locally", res.Message)

	out, ok := s.prefs.Lookup(ctx, "a@x.com")
	require.True(t, ok)
	require.Equal(t, "a@x.com", out.Email)
	require.Equal(t, 34, out.AgeOrDefault())
	require.Equal(t, []string{"Malay", "Thai"}, out.Cuisine)
	require.Equal(t, []string{"Weight Loss", "Muscle Building"}, out.Goals)
	require.Empty(t, out.DietaryPreferences)
	require.True(t, at.Equal(out.UpdatedAt))
}

func TestPreferencesNonNumericAgeDefaults(t *testing.T) {
	s := newLocalStores(t)
	path := filepath.Join(s.dir, "user_preferences.csv")
	require.NoError(t, os.WriteFile(path, []byte("Email,Age,Sex\na@x.com,thirty,Male\n"), 0o644))

	out, ok := s.prefs.Lookup(context.Background(), "a@x.com")
	require.True(t, ok)
	require.Nil(t, out.Age)
	require.Equal(t, models.DefaultAge, out.AgeOrDefault())
	require.Equal(t, "Male", out.Sex)
}

func TestParseAge(t *testing.T) {
	require.Nil(t, parseAge(""))
	require.Nil(t, parseAge("-3"))
	require.Nil(t, parseAge("2.5"))
	require.Equal(t, 41, *parseAge(" 41 "))
}

func TestProfileHeaderOrder(t *testing.T) {
	s := newLocalStores(t)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	res := s.profiles.Upsert(context.Background(), "a@x.com", models.Profile{
		FirstName: "Ana", LastName: "Lee", SignupDate: at, SignInMethod: "Google OAuth", LastActive: at,
	})
	require.True(t, res.OK)
	require.Equal(t, []string{
		"First Name,Last Name,Email,Picture,Signup Date,Sign-in Method,Last Active",
		"Ana,Lee,a@x.com,,2025-01-02 03:04:05,Google OAuth,2025-01-02 03:04:05",
	}, readLines(t, filepath.Join(s.dir, "users.csv")))
}
