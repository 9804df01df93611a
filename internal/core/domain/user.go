package domain

import (
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	MaxNameLength  = 255
	MaxEmailLength = 255
)

// User is a campus account: a student filing tickets or a staff member
// (TA/admin) working them. The engine reads users to validate ticket
// ownership and notification recipients; account management itself lives
// outside the engine.
type User struct {
	ID                   int64
	Name                 string
	Email                string
	Role                 Role
	HashedPassword       string
	NotificationsEnabled bool
	CreatedAt            time.Time
}

// IsStaff reports whether the user may hold ticket assignments.
func (u *User) IsStaff() bool {
	return u.Role.IsStaff()
}

// CheckPassword verifies the provided password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
	return err == nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// IsValidEmail validates email format.
func IsValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Team is a capstone project team. Its instructor receives the automatic
// assignment when a team member files a ticket.
type Team struct {
	ID           int64
	Name         string
	SponsorName  string
	Section      string
	InstructorID int64
}
