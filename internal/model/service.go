package model

// ServiceEntry describes one nearby-services category exposed to the places
// search.
type ServiceEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Query    string `json:"query"`
}
