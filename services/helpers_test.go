package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dietvision/models"
	"dietvision/storage"

	"github.com/stretchr/testify/require"
)

type localStores struct {
	dir      string
	profiles *storage.KeyedStore[models.Profile]
	prefs    *storage.KeyedStore[models.Preferences]
	feedback *storage.KeyedStore[models.Feedback]
}

func newLocalStores(t *testing.T) localStores {
	t.Helper()
	dir := t.TempDir()
	tables := storage.NewFallback(nil, storage.NewCSVTable())
	return localStores{
		dir:      dir,
		profiles: storage.NewKeyedStore(ProfileSchema(filepath.Join(dir, "users.csv")), tables),
		prefs:    storage.NewKeyedStore(PreferencesSchema(filepath.Join(dir, "user_preferences.csv")), tables),
		feedback: storage.NewKeyedStore(FeedbackSchema(filepath.Join(dir, "feedback.csv")), tables),
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func fixedClock(ts ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := ts[min(i, len(ts)-1)]
		i++
		return t
	}
}

func intPtr(n int) *int { return &n }
