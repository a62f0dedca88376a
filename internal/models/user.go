package models

type ErrorResponse struct {
	Error string `json:"error"`
}

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	Subject string
	Role    string
}
