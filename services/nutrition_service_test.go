package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const nutrientCSV = `Food Class,Portion Size,Calories,Protein,Fat,Carbs,Fiber,Sugar,Tags
Pizza,1 slice (107 g),285,12.2,10.4,35.7,2.5,3.8,"high-carb, gluten"
Chicken Curry,1 cup (240 g),293 kcal,25 g,16,12,2,4,high-protein
`

func writeNutrientDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Nutrient_Database.csv")
	require.NoError(t, os.WriteFile(path, []byte(nutrientCSV), 0o644))
	return path
}

func TestNutritionLookupIgnoresCase(t *testing.T) {
	svc, err := NewNutritionService(writeNutrientDB(t), nil)
	require.NoError(t, err)
	require.Equal(t, 2, svc.Len())

	facts, err := svc.Lookup(context.Background(), "PIZZA")
	require.NoError(t, err)
	require.Equal(t, "Pizza", facts.FoodClass)
	require.Equal(t, "1 slice (107 g)", facts.PortionSize)
	require.Equal(t, 285.0, facts.Calories)
	require.Equal(t, 35.7, facts.Carbs)
	require.Equal(t, []string{"high-carb", "gluten"}, facts.Tags)
	require.Equal(t, SourceTable, facts.Source)

	facts, err = svc.Lookup(context.Background(), "chicken curry")
	require.NoError(t, err)
	require.Equal(t, 293.0, facts.Calories)
	require.Equal(t, 25.0, facts.Protein)
}

func TestNutritionLookupMissing(t *testing.T) {
	svc, err := NewNutritionService(writeNutrientDB(t), nil)
	require.NoError(t, err)

	_, err = svc.Lookup(context.Background(), "Sushi")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Lookup(context.Background(), " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestNutritionMissingFileIsEmpty(t *testing.T) {
	svc, err := NewNutritionService(filepath.Join(t.TempDir(), "nope.csv"), nil)
	require.NoError(t, err)
	require.Equal(t, 0, svc.Len())
}

func TestNutritionFallsBackToEdamam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/food-database/v2/parser", r.URL.Path)
		require.Equal(t, "sushi", r.URL.Query().Get("ingr"))
		require.Equal(t, "id", r.URL.Query().Get("app_id"))
		w.Write([]byte(`{"parsed":[],"hints":[{"food":{"foodId":"f1","label":"Sushi","category":"Generic meals",
			"nutrients":{"ENERC_KCAL":150,"PROCNT":6,"FAT":1.2,"CHOCDF":30,"FIBTG":0.5}}}]}`))
	}))
	defer srv.Close()

	eda := NewEdamamService("id", "key")
	eda.baseURL = srv.URL
	svc, err := NewNutritionService(writeNutrientDB(t), eda)
	require.NoError(t, err)

	facts, err := svc.Lookup(context.Background(), "sushi")
	require.NoError(t, err)
	require.Equal(t, "Sushi", facts.FoodClass)
	require.Equal(t, 150.0, facts.Calories)
	require.Equal(t, "100 g", facts.PortionSize)
	require.Equal(t, SourceEdamam, facts.Source)
	require.Equal(t, []string{"Generic meals"}, facts.Tags)
}

func TestNutritionEdamamNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"parsed":[],"hints":[]}`))
	}))
	defer srv.Close()

	eda := NewEdamamService("id", "key")
	eda.baseURL = srv.URL
	svc, err := NewNutritionService(writeNutrientDB(t), eda)
	require.NoError(t, err)

	_, err = svc.Lookup(context.Background(), "moon cheese")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParseAmount(t *testing.T) {
	require.Equal(t, 12.5, parseAmount("12.5 g"))
	require.Equal(t, 250.0, parseAmount("250kcal"))
	require.Equal(t, 0.0, parseAmount("n/a"))
	require.Equal(t, 0.0, parseAmount(""))
}
