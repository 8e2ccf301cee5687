package domain

// Claims are the parts of a verified bearer token the API cares about.
type Claims struct {
	Subject string `json:"sub"`
	UserID  string `json:"uid,omitempty"`
}
