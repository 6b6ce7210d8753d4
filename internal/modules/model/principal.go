package model

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
