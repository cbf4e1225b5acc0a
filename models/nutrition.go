package models

// NutritionFacts is one entry of the nutrient table, per portion.
type NutritionFacts struct {
	FoodClass   string   `json:"food_class"`
	PortionSize string   `json:"portion_size"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Fat         float64  `json:"fat"`
	Carbs       float64  `json:"carbs"`
	Fiber       float64  `json:"fiber"`
	Sugar       float64  `json:"sugar"`
	Tags        []string `json:"tags"`
	Source      string   `json:"source"` // "table" or "edamam"
}

// Prediction is the classifier's best guess for a meal photo.
type Prediction struct {
	FoodName   string    `json:"food_name"`
	Confidence float64   `json:"confidence"` // percent, two decimals
	Labels     []string  `json:"all_labels"`
	Scores     []float64 `json:"all_scores"`
}

type Warning struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Analysis is what one upload produces; Nutrition is nil when no table entry matched.
type Analysis struct {
	Prediction Prediction      `json:"prediction"`
	Nutrition  *NutritionFacts `json:"nutrition,omitempty"`
	Warnings   []Warning       `json:"warnings"`
	ImageURL   string          `json:"image_url,omitempty"`
	MealID     uint            `json:"meal_id,omitempty"`
}
