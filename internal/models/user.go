package models

// User is the signed-in identity, extracted from the bearer token claims.
type User struct {
	ID    string
	Name  string
	Email string
}
