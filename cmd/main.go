package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dietvision/config"
	"dietvision/logger"
	"dietvision/routes"
	"dietvision/services"
	"dietvision/storage"
	"dietvision/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Options{
		Env:       cfg.Env,
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		MaxFiles:  cfg.Log.MaxFiles,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := build(ctx, cfg)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func build(ctx context.Context, cfg *config.Config) (routes.Deps, error) {
	db, err := config.InitDB(cfg.DB)
	if err != nil {
		return routes.Deps{}, err
	}

	tables, err := recordTables(ctx, cfg)
	if err != nil {
		return routes.Deps{}, err
	}
	profiles := storage.NewKeyedStore(services.ProfileSchema(cfg.Storage.UsersFile), tables)
	prefs := storage.NewKeyedStore(services.PreferencesSchema(cfg.Storage.PreferencesFile), tables)
	feedback := storage.NewKeyedStore(services.FeedbackSchema(cfg.Storage.FeedbackFile), tables)

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg == nil {
			c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
			if err != nil {
				return aws.Config{}, fmt.Errorf("load aws config: %w", err)
			}
			awsCfg = &c
		}
		return *awsCfg, nil
	}

	var notifier services.Notifier
	if cfg.AWS.SESSender != "" && cfg.AWS.FeedbackNotifyAddr != "" {
		ac, err := loadAWS()
		if err != nil {
			return routes.Deps{}, err
		}
		notifier = utils.NewMailer(ac, cfg.AWS.SESSender, cfg.AWS.FeedbackNotifyAddr)
	}

	var images services.ImageStore
	if cfg.AWS.S3Bucket != "" {
		ac, err := loadAWS()
		if err != nil {
			return routes.Deps{}, err
		}
		if cfg.AWS.S3Region != "" {
			ac = ac.Copy()
			ac.Region = cfg.AWS.S3Region
		}
		images = utils.NewImageUploader(ac, cfg.AWS.S3Bucket, cfg.AWS.CloudFrontURL)
	}

	var classifier services.Classifier
	switch cfg.Classifier {
	case "rekognition":
		ac, err := loadAWS()
		if err != nil {
			return routes.Deps{}, err
		}
		classifier = services.NewRekognitionClassifier(ac)
	default:
		classifier, err = services.NewVertexClassifier(ctx, cfg.Vertex)
		if err != nil {
			return routes.Deps{}, err
		}
	}

	var edamam *services.EdamamService
	if cfg.Edamam.AppID != "" {
		edamam = services.NewEdamamService(cfg.Edamam.AppID, cfg.Edamam.AppKey)
	}
	nutrition, err := services.NewNutritionService(cfg.NutrientDBPath, edamam)
	if err != nil {
		return routes.Deps{}, err
	}

	meals := services.NewMealService(db)
	if cfg.GenAIKey == "" {
		logger.Warn("GENAI_API_KEY not set, chat will use scripted replies")
	}

	return routes.Deps{
		JWTSecret: cfg.JWTSecret,
		Sessions:  services.NewSessionStore(),
		Auth:      services.NewAuthService(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL),
		Users:     services.NewUserService(profiles, prefs),
		Feedback:  services.NewFeedbackService(feedback, notifier),
		Food:      services.NewFoodService(classifier, nutrition, meals, images),
		Chat:      services.NewChatService(cfg.GenAIKey, cfg.GenAIModel),
		Meals:     meals,
	}, nil
}

// recordTables composes the remote and local tiers. Without spreadsheet
// credentials everything is kept in local files.
func recordTables(ctx context.Context, cfg *config.Config) (*storage.Fallback, error) {
	local := storage.NewCSVTable()
	creds, err := cfg.SheetsCredentials()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		logger.Info("spreadsheet not configured, saving records locally",
			zap.String("dir", cfg.Storage.DataDir))
		return storage.NewFallback(nil, local), nil
	}
	gs, err := storage.NewGoogleSheets(ctx, creds, cfg.Sheets.SpreadsheetID)
	if err != nil {
		logger.Warn("spreadsheet client unavailable, saving records locally", zap.Error(err))
		return storage.NewFallback(nil, local), nil
	}
	return storage.NewFallback(storage.NewSheetsTable(gs), local), nil
}
