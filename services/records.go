package services

import (
	"strconv"
	"strings"
	"time"

	"dietvision/models"
	"dietvision/storage"
)

// cell timestamps, local time
const timeLayout = "2006-01-02 15:04:05"

const (
	ProfileSheet     = "User Profile"
	PreferencesSheet = "Health & Preferences"
	FeedbackSheet    = "Feedback"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func ProfileSchema(file string) storage.Schema[models.Profile] {
	return storage.Schema[models.Profile]{
		Table: storage.TableSpec{
			Name:      "profile",
			Sheet:     ProfileSheet,
			File:      file,
			Header:    []string{"First Name", "Last Name", "Email", "Picture", "Signup Date", "Sign-in Method", "Last Active"},
			KeyColumn: "Email",
			SheetCols: 20,
		},
		Encode: func(p models.Profile) storage.Row {
			return storage.Row{
				"First Name":     p.FirstName,
				"Last Name":      p.LastName,
				"Email":          p.Email,
				"Picture":        p.Picture,
				"Signup Date":    formatTime(p.SignupDate),
				"Sign-in Method": p.SignInMethod,
				"Last Active":    formatTime(p.LastActive),
			}
		},
		Decode: func(r storage.Row) models.Profile {
			return models.Profile{
				FirstName:    r["First Name"],
				LastName:     r["Last Name"],
				Email:        r["Email"],
				Picture:      r["Picture"],
				SignupDate:   parseTime(r["Signup Date"]),
				SignInMethod: r["Sign-in Method"],
				LastActive:   parseTime(r["Last Active"]),
			}
		},
	}
}

func PreferencesSchema(file string) storage.Schema[models.Preferences] {
	return storage.Schema[models.Preferences]{
		Table: storage.TableSpec{
			Name:  "preferences",
			Sheet: PreferencesSheet,
			File:  file,
			Header: []string{
				"Email", "Age", "Sex", "Country", "Ethnicity", "Cuisine",
				"Activity Level", "Health Conditions", "Goals",
				"Dietary Preferences", "Updated At",
			},
			KeyColumn: "Email",
			SheetCols: 25,
		},
		Encode: func(p models.Preferences) storage.Row {
			age := ""
			if p.Age != nil {
				age = strconv.Itoa(*p.Age)
			}
			return storage.Row{
				"Email":               p.Email,
				"Age":                 age,
				"Sex":                 p.Sex,
				"Country":             p.Country,
				"Ethnicity":           p.Ethnicity,
				"Cuisine":             storage.JoinList(p.Cuisine),
				"Activity Level":      p.ActivityLevel,
				"Health Conditions":   storage.JoinList(p.HealthConditions),
				"Goals":               storage.JoinList(p.Goals),
				"Dietary Preferences": storage.JoinList(p.DietaryPreferences),
				"Updated At":          formatTime(p.UpdatedAt),
			}
		},
		Decode: func(r storage.Row) models.Preferences {
			return models.Preferences{
				Email:              r["Email"],
				Age:                parseAge(r["Age"]),
				Sex:                r["Sex"],
				Country:            r["Country"],
				Ethnicity:          r["Ethnicity"],
				Cuisine:            storage.SplitList(r["Cuisine"]),
				ActivityLevel:      r["Activity Level"],
				HealthConditions:   storage.SplitList(r["Health Conditions"]),
				Goals:              storage.SplitList(r["Goals"]),
				DietaryPreferences: storage.SplitList(r["Dietary Preferences"]),
				UpdatedAt:          parseTime(r["Updated At"]),
			}
		},
	}
}

// parseAge accepts plain digits only; anything else is an unset age.
func parseAge(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func FeedbackSchema(file string) storage.Schema[models.Feedback] {
	return storage.Schema[models.Feedback]{
		Table: storage.TableSpec{
			Name:      "feedback",
			Sheet:     FeedbackSheet,
			File:      file,
			Header:    []string{"Timestamp", "User Email", "Rating", "Feedback"},
			KeyColumn: "User Email",
			SheetCols: 10,
		},
		Encode: func(f models.Feedback) storage.Row {
			return storage.Row{
				"Timestamp":  formatTime(f.Timestamp),
				"User Email": f.Email,
				"Rating":     strconv.Itoa(f.Rating),
				"Feedback":   f.Text,
			}
		},
		Decode: func(r storage.Row) models.Feedback {
			rating, _ := strconv.Atoi(strings.TrimSpace(r["Rating"]))
			return models.Feedback{
				Timestamp: parseTime(r["Timestamp"]),
				Email:     r["User Email"],
				Rating:    rating,
				Text:      r["Feedback"],
			}
		},
	}
}
