package models

import "time"

const DefaultAge = 25

// Preferences holds the extended health and nutrition answers for a user.
// Age is nil when never given or stored as something other than a number.
type Preferences struct {
	Email              string    `json:"email"`
	Age                *int      `json:"age,omitempty"`
	Sex                string    `json:"sex"`
	Country            string    `json:"country"`
	Ethnicity          string    `json:"ethnicity"`
	Cuisine            []string  `json:"cuisine"`
	ActivityLevel      string    `json:"activity_level"`
	HealthConditions   []string  `json:"health_conditions"`
	Goals              []string  `json:"goals"`
	DietaryPreferences []string  `json:"dietary_preferences"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p Preferences) AgeOrDefault() int {
	if p.Age == nil {
		return DefaultAge
	}
	return *p.Age
}
