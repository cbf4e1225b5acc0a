package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSyncLoginPreservesSignupDate(t *testing.T) {
	s := newLocalStores(t)
	first := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	later := time.Date(2025, 2, 1, 9, 0, 0, 0, time.Local)

	svc := NewUserService(s.profiles, s.prefs)
	svc.now = fixedClock(first, later)
	ctx := context.Background()
	gu := GoogleUser{Email: "a@x.com", Name: "Ana Maria Lee", Picture: "https://p/a.png"}

	p, res := svc.SyncLogin(ctx, gu)
	require.True(t, res.OK)
	require.Equal(t, "saved locally", res.Message)
	require.Equal(t, "Ana", p.FirstName)
	require.Equal(t, "Maria Lee", p.LastName)
	require.Equal(t, "Google OAuth", p.SignInMethod)

	p, res = svc.SyncLogin(ctx, gu)
	require.True(t, res.OK)
	require.Equal(t, "updated locally", res.Message)
	require.True(t, first.Equal(p.SignupDate))
	require.True(t, later.Equal(p.LastActive))

	stored, err := svc.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, first.Equal(stored.SignupDate))
	require.True(t, later.Equal(stored.LastActive))
	require.Len(t, readLines(t, s.dir+"/users.csv"), 2)
}

func TestSyncLoginWithoutEmail(t *testing.T) {
	s := newLocalStores(t)
	_, res := NewUserService(s.profiles, s.prefs).SyncLogin(context.Background(), GoogleUser{Name: "Nobody"})
	require.False(t, res.OK)
	require.Equal(t, "email is required", res.Message)
}

func TestSavePreferences(t *testing.T) {
	s := newLocalStores(t)
	svc := NewUserService(s.profiles, s.prefs)
	ctx := context.Background()

	_, err := svc.GetPreferences(ctx, "a@x.com")
	require.True(t, errors.Is(err, ErrNotFound))

	prefs, res, err := svc.SavePreferences(ctx, "a@x.com", PreferencesInput{
		Age:   intPtr(30),
		Goals: []string{" Weight Loss ", "", "General Health"},
	})
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, []string{"Weight Loss", "General Health"}, prefs.Goals)
	require.False(t, prefs.UpdatedAt.IsZero())

	got, err := svc.GetPreferences(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, 30, got.AgeOrDefault())
	require.Equal(t, prefs.Goals, got.Goals)
}

func TestSavePreferencesRejectsAge(t *testing.T) {
	s := newLocalStores(t)
	svc := NewUserService(s.profiles, s.prefs)
	for _, age := range []int{0, 121, -1} {
		_, _, err := svc.SavePreferences(context.Background(), "a@x.com", PreferencesInput{Age: intPtr(age)})
		require.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestSavePreferencesEmptyEmail(t *testing.T) {
	s := newLocalStores(t)
	_, res, err := NewUserService(s.profiles, s.prefs).SavePreferences(context.Background(), "", PreferencesInput{})
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Equal(t, "email is required", res.Message)
}
