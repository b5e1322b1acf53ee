package models

import "time"

// User is an operator account. PasswordHash is bcrypt and never serialized.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	DisplayName  string    `bson:"display_name" json:"display_name"`
	Phone        string    `bson:"phone" json:"phone"`
	Role         string    `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// PasswordResetToken is a single-use credential for the forgot-password flow.
type PasswordResetToken struct {
	Token     string    `bson:"_id" json:"token"`
	UserID    string    `bson:"user_id" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}

// Expired reports whether the token is past its validity window.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
