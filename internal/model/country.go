package model

import "time"

type Country struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Flag          string    `json:"flag"`
	Region        string    `json:"region"`
	VisaRequired  bool      `json:"visa_required"`
	VisaFreeStay  int       `json:"visa_free_stay_days"`
	ProcessingFee float64   `json:"processing_fee"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CountryImage is one gallery entry for a country, served as a presigned URL
// when an image store is configured.
type CountryImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
