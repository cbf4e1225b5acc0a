package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dietvision/models"
)

const edamamBaseURL = "https://api.edamam.com"

// EdamamService looks foods up in the Edamam Food Database.
type EdamamService struct {
	appID, appKey string
	baseURL       string
	client        *http.Client
}

func NewEdamamService(appID, appKey string) *EdamamService {
	return &EdamamService{
		appID:   appID,
		appKey:  appKey,
		baseURL: edamamBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *EdamamService) Configured() bool {
	return s != nil && s.appID != "" && s.appKey != ""
}

type foodParserResponse struct {
	Parsed []struct {
		Food edamamFood `json:"food"`
	} `json:"parsed"`
	Hints []struct {
		Food edamamFood `json:"food"`
	} `json:"hints"`
}

type edamamFood struct {
	FoodID    string             `json:"foodId"`
	Label     string             `json:"label"`
	Category  string             `json:"category"`
	Nutrients map[string]float64 `json:"nutrients"`
}

// Lookup returns per-100 g facts for the best match of name.
func (s *EdamamService) Lookup(ctx context.Context, name string) (*models.NutritionFacts, error) {
	u := fmt.Sprintf("%s/api/food-database/v2/parser?ingr=%s&app_id=%s&app_key=%s",
		s.baseURL, url.QueryEscape(name), url.QueryEscape(s.appID), url.QueryEscape(s.appKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create edamam request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Edamam parser: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Edamam parser response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edamam parser API error %d: %s", resp.StatusCode, string(body))
	}

	var pr foodParserResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse Edamam parser JSON: %w", err)
	}

	var food *edamamFood
	switch {
	case len(pr.Parsed) > 0:
		food = &pr.Parsed[0].Food
	case len(pr.Hints) > 0:
		food = &pr.Hints[0].Food
	default:
		return nil, fmt.Errorf("edamam: %q: %w", name, ErrNotFound)
	}

	n := food.Nutrients
	facts := &models.NutritionFacts{
		FoodClass:   food.Label,
		PortionSize: "100 g",
		Calories:    n["ENERC_KCAL"],
		Protein:     n["PROCNT"],
		Fat:         n["FAT"],
		Carbs:       n["CHOCDF"],
		Fiber:       n["FIBTG"],
		Sugar:       n["SUGAR"],
		Tags:        []string{},
		Source:      SourceEdamam,
	}
	if c := strings.TrimSpace(food.Category); c != "" {
		facts.Tags = append(facts.Tags, c)
	}
	return facts, nil
}
