package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"dietvision/logger"
	"dietvision/models"

	"go.uber.org/zap"
)

const (
	SourceTable  = "table"
	SourceEdamam = "edamam"
)

var nutrientColumns = []string{"Food Class", "Portion Size", "Calories", "Protein", "Fat", "Carbs", "Fiber", "Sugar", "Tags"}

// NutritionService answers "what is in this food" from the bundled nutrient
// table, asking Edamam for anything the table lacks.
type NutritionService struct {
	table  map[string]models.NutritionFacts
	edamam *EdamamService
}

// NewNutritionService loads the table at path. A missing file leaves the table
// empty. edamam may be nil.
func NewNutritionService(path string, edamam *EdamamService) (*NutritionService, error) {
	s := &NutritionService{table: map[string]models.NutritionFacts{}, edamam: edamam}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("nutrient database not found", zap.String("path", path))
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open nutrient database: %w", err)
	}
	defer f.Close()

	if err := s.load(f); err != nil {
		return nil, fmt.Errorf("load nutrient database %s: %w", path, err)
	}
	logger.Info("nutrient database loaded", zap.String("path", path), zap.Int("foods", len(s.table)))
	return s, nil
}

func (s *NutritionService) load(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	idx := make(map[string]int, len(nutrientColumns))
	for _, want := range nutrientColumns {
		idx[want] = -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				idx[want] = i
				break
			}
		}
	}
	if idx["Food Class"] < 0 {
		return errors.New(`missing "Food Class" column`)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		get := func(col string) string {
			i := idx[col]
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		name := get("Food Class")
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := s.table[key]; dup {
			continue
		}
		s.table[key] = models.NutritionFacts{
			FoodClass:   name,
			PortionSize: get("Portion Size"),
			Calories:    parseAmount(get("Calories")),
			Protein:     parseAmount(get("Protein")),
			Fat:         parseAmount(get("Fat")),
			Carbs:       parseAmount(get("Carbs")),
			Fiber:       parseAmount(get("Fiber")),
			Sugar:       parseAmount(get("Sugar")),
			Tags:        splitTags(get("Tags")),
			Source:      SourceTable,
		}
	}
}

// Lookup matches name against the table ignoring case, then tries Edamam.
func (s *NutritionService) Lookup(ctx context.Context, name string) (*models.NutritionFacts, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: food name is required", ErrInvalidInput)
	}
	if facts, ok := s.table[strings.ToLower(name)]; ok {
		facts.Tags = append([]string(nil), facts.Tags...)
		return &facts, nil
	}
	if s.edamam.Configured() {
		facts, err := s.edamam.Lookup(ctx, name)
		if err == nil {
			return facts, nil
		}
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("edamam lookup failed", zap.String("food", name), zap.Error(err))
		}
	}
	return nil, fmt.Errorf("nutrition for %q: %w", name, ErrNotFound)
}

func (s *NutritionService) Len() int { return len(s.table) }

// parseAmount reads the leading number of cells like "12.5", "12.5 g" or "250kcal".
func parseAmount(cell string) float64 {
	end := 0
	for end < len(cell) && (cell[end] == '.' || cell[end] == '-' || (cell[end] >= '0' && cell[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(cell[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

func splitTags(cell string) []string {
	out := []string{}
	for _, t := range strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == ';' || r == '|' }) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
