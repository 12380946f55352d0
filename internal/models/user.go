package models

// User represents a registered user. Hash fields are never serialized.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FaceDataHash string `json:"-"`
	CreatedAt    string `json:"created_at"`
}
