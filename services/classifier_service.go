package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"dietvision/config"
	"dietvision/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Classifier names the food in a photo.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (*models.Prediction, error)
}

// VertexClassifier calls a deployed AutoML image classification endpoint.
type VertexClassifier struct {
	client     *http.Client
	predictURL string
}

func NewVertexClassifier(ctx context.Context, cfg config.VertexConfig) (*VertexClassifier, error) {
	if cfg.ProjectID == "" || cfg.Region == "" || cfg.EndpointID == "" {
		return nil, fmt.Errorf("vertex endpoint not configured")
	}
	var (
		creds *google.Credentials
		err   error
	)
	if cfg.CredentialsFile != "" {
		data, rerr := os.ReadFile(cfg.CredentialsFile)
		if rerr != nil {
			return nil, fmt.Errorf("read vertex credentials: %w", rerr)
		}
		creds, err = google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	} else {
		creds, err = google.FindDefaultCredentials(ctx, cloudPlatformScope)
	}
	if err != nil {
		return nil, fmt.Errorf("load vertex credentials: %w", err)
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = 30 * time.Second
	url := fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/endpoints/%s:predict",
		cfg.Region, cfg.ProjectID, cfg.Region, cfg.EndpointID)
	return newVertexClassifier(client, url), nil
}

func newVertexClassifier(client *http.Client, predictURL string) *VertexClassifier {
	return &VertexClassifier{client: client, predictURL: predictURL}
}

type vertexRequest struct {
	Instances []vertexInstance `json:"instances"`
}

type vertexInstance struct {
	Content string `json:"content"`
}

type vertexResponse struct {
	Predictions []struct {
		DisplayNames []string  `json:"displayNames"`
		Confidences  []float64 `json:"confidences"`
	} `json:"predictions"`
}

func (c *VertexClassifier) Classify(ctx context.Context, image []byte) (*models.Prediction, error) {
	body, err := json.Marshal(vertexRequest{
		Instances: []vertexInstance{{Content: base64.StdEncoding.EncodeToString(image)}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal prediction request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call vertex endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read prediction response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vertex endpoint error %d: %s", resp.StatusCode, string(raw))
	}

	var vr vertexResponse
	if err := json.Unmarshal(raw, &vr); err != nil {
		return nil, fmt.Errorf("parse prediction response: %w", err)
	}
	if len(vr.Predictions) == 0 {
		return nil, ErrNoPrediction
	}
	p := vr.Predictions[0]
	return topPrediction(p.DisplayNames, p.Confidences)
}

// topPrediction picks the highest score. Scores are fractions in [0,1].
func topPrediction(labels []string, scores []float64) (*models.Prediction, error) {
	n := min(len(labels), len(scores))
	if n == 0 {
		return nil, ErrNoPrediction
	}
	best := 0
	for i := 1; i < n; i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return &models.Prediction{
		FoodName:   FoodDisplayName(labels[best]),
		Confidence: math.Round(scores[best]*10000) / 100,
		Labels:     labels[:n],
		Scores:     scores[:n],
	}, nil
}

// FoodDisplayName turns a model label such as "chicken_curry" into "Chicken Curry".
// A Caser holds state, so each call builds its own.
func FoodDisplayName(label string) string {
	return cases.Title(language.English).String(strings.TrimSpace(strings.ReplaceAll(label, "_", " ")))
}
