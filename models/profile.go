package models

import "time"

// Profile is the identity record kept for every Google sign-in.
type Profile struct {
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Picture      string    `json:"picture,omitempty"`
	SignupDate   time.Time `json:"signup_date"`
	SignInMethod string    `json:"signin_method"`
	LastActive   time.Time `json:"last_active"`
}

func (p Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
