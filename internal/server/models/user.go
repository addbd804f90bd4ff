package models

import (
	"strings"
	"time"
)

// User is a person who signed in with Google. Email is the natural key.
type User struct {
	Email     string    `json:"email" bson:"email"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"-" bson:"createdAt"`
	UpdatedAt time.Time `json:"-" bson:"updatedAt"`
}

// NormalizeEmail trims and lower-cases an email address so it can be used as
// a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
