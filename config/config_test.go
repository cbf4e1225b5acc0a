package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("CLASSIFIER", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "vertex", cfg.Classifier)
	require.Equal(t, "sqlite", cfg.DB.Driver)
	require.Equal(t, filepath.Join("/srv/data", "users.csv"), cfg.Storage.UsersFile)
	require.Equal(t, filepath.Join("/srv/data", "user_preferences.csv"), cfg.Storage.PreferencesFile)
}

func TestValidateRejectsUnknownClassifier(t *testing.T) {
	cfg := &Config{JWTSecret: "x", Classifier: "magic", DB: DBConfig{Driver: "sqlite"}}
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestSheetsCredentialsAbsentWithoutSpreadsheet(t *testing.T) {
	cfg := &Config{Sheets: SheetsConfig{CredentialsJSON: "{}"}}
	creds, err := cfg.SheetsCredentials()
	require.NoError(t, err)
	require.Nil(t, creds)
}

func TestSheetsCredentialsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600))
	cfg := &Config{Sheets: SheetsConfig{SpreadsheetID: "sheet-id", CredentialsFile: path}}

	creds, err := cfg.SheetsCredentials()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"service_account"}`, string(creds))
}

func TestInitDBMigratesSqlite(t *testing.T) {
	db, err := InitDB(DBConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "meals.db")})
	require.NoError(t, err)
	require.True(t, db.Migrator().HasTable("meal_logs"))
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("LOG_MAX_FILES", "lots")
	require.Equal(t, 5, GetEnvInt("LOG_MAX_FILES", 5))
}
