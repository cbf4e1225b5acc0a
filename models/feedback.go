package models

import "time"

type Feedback struct {
	Timestamp time.Time `json:"timestamp"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	Text      string    `json:"feedback"`
}
