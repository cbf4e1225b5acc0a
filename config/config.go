package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env  string
	Port string

	JWTSecret string

	Google  GoogleConfig
	Sheets  SheetsConfig
	Storage StorageConfig
	DB      DBConfig
	Log     LogConfig

	Classifier     string // "vertex" or "rekognition"
	Vertex         VertexConfig
	AWS            AWSConfig
	Edamam         EdamamConfig
	GenAIKey       string
	GenAIModel     string
	NutrientDBPath string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// SheetsConfig points at the spreadsheet used as the primary record store.
// Either CredentialsFile or CredentialsJSON carries the service account.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
}

type StorageConfig struct {
	DataDir         string
	UsersFile       string
	PreferencesFile string
	FeedbackFile    string
}

type DBConfig struct {
	Driver string
	DSN    string
}

type LogConfig struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
}

type VertexConfig struct {
	ProjectID       string
	Region          string
	EndpointID      string
	CredentialsFile string
}

type AWSConfig struct {
	Region             string
	S3Bucket           string
	S3Region           string
	CloudFrontURL      string
	SESSender          string
	FeedbackNotifyAddr string
}

type EdamamConfig struct {
	AppID  string
	AppKey string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := GetEnv("DATA_DIR", ".")
	cfg := &Config{
		Env:       GetEnv("ENV", "development"),
		Port:      GetEnv("PORT", "8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Google: GoogleConfig{
			ClientID:     os.Getenv("CLIENT_ID"),
			ClientSecret: os.Getenv("CLIENT_SECRET"),
			RedirectURL:  GetEnv("REDIRECT_URI", "http://localhost:8080/auth/google/callback"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
			CredentialsFile: os.Getenv("SHEETS_CREDENTIALS_FILE"),
			CredentialsJSON: os.Getenv("SHEETS_CREDENTIALS_JSON"),
		},
		Storage: StorageConfig{
			DataDir:         dataDir,
			UsersFile:       filepath.Join(dataDir, GetEnv("USERS_CSV", "users.csv")),
			PreferencesFile: filepath.Join(dataDir, GetEnv("PREFERENCES_CSV", "user_preferences.csv")),
			FeedbackFile:    filepath.Join(dataDir, GetEnv("FEEDBACK_CSV", "feedback.csv")),
		},
		DB: DBConfig{
			Driver: GetEnv("DB_DRIVER", "sqlite"),
			DSN:    GetEnv("DB_DSN", filepath.Join(dataDir, "dietvision.db")),
		},
		Log: LogConfig{
			Level:     os.Getenv("LOG_LEVEL"),
			File:      os.Getenv("LOG_FILE"),
			MaxSizeMB: GetEnvInt("LOG_MAX_SIZE_MB", 10),
			MaxFiles:  GetEnvInt("LOG_MAX_FILES", 5),
		},
		Classifier: strings.ToLower(GetEnv("CLASSIFIER", "vertex")),
		Vertex: VertexConfig{
			ProjectID:       os.Getenv("PROJECT_ID"),
			Region:          GetEnv("REGION", "us-central1"),
			EndpointID:      os.Getenv("ENDPOINT_ID"),
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		AWS: AWSConfig{
			Region:             GetEnv("AWS_REGION", "us-east-1"),
			S3Bucket:           os.Getenv("S3_BUCKET"),
			S3Region:           os.Getenv("S3_REGION"),
			CloudFrontURL:      os.Getenv("CLOUDFRONT_URL"),
			SESSender:          os.Getenv("SES_EMAIL"),
			FeedbackNotifyAddr: os.Getenv("FEEDBACK_NOTIFY_EMAIL"),
		},
		Edamam: EdamamConfig{
			AppID:  os.Getenv("EDAMAM_APP_ID"),
			AppKey: os.Getenv("EDAMAM_APP_KEY"),
		},
		GenAIKey:       os.Getenv("GENAI_API_KEY"),
		GenAIModel:     GetEnv("GENAI_MODEL", "gemini-2.5-flash"),
		NutrientDBPath: GetEnv("NUTRIENT_DB_PATH", "Datasets/Nutrient_Database.csv"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET not set", ErrInvalidConfig)
	}
	switch c.Classifier {
	case "vertex", "rekognition":
	default:
		return fmt.Errorf("%w: CLASSIFIER must be vertex or rekognition, got %q", ErrInvalidConfig, c.Classifier)
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: DB_DRIVER must be sqlite or postgres, got %q", ErrInvalidConfig, c.DB.Driver)
	}
	return nil
}

// SheetsCredentials returns the service account bundle, or nil when the
// remote store is not configured.
func (c *Config) SheetsCredentials() ([]byte, error) {
	if c.Sheets.SpreadsheetID == "" {
		return nil, nil
	}
	if c.Sheets.CredentialsJSON != "" {
		return []byte(c.Sheets.CredentialsJSON), nil
	}
	if c.Sheets.CredentialsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Sheets.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	return data, nil
}

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
