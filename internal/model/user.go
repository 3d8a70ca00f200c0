package model

import "time"

type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	FullName           string    `json:"full_name"`
	Role               string    `json:"role"`
	LegalStatus        string    `json:"legal_status"`
	DestinationCountry string    `json:"destination_country"`
	Location           *Location `json:"location,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Location is the user's last known position, used by the places search.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Legal statuses recognized by the step generator.
const (
	StatusTourist  = "tourist"
	StatusWorker   = "worker"
	StatusStudent  = "student"
	StatusResident = "resident"
)
