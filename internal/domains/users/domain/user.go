package domain

import (
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const minPasswordLength = 6

var (
	ErrEmptyName     = errors.New("name is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrInvalidEmail  = errors.New("email address is invalid")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrInvalidRole   = errors.New("role must be user or admin")
)

// PasswordCost is the bcrypt work factor used when hashing passwords.
var PasswordCost = bcrypt.DefaultCost

// User represents an account allowed to file adoption applications.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// NewUser builds a user ensuring required invariants and hashing the password.
func NewUser(name, email, password string, role Role) (*User, error) {
	user := &User{}
	if err := user.Rename(name); err != nil {
		return nil, err
	}
	if err := user.ChangeEmail(email); err != nil {
		return nil, err
	}
	if err := user.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Rename validates the display name.
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	u.Name = name
	return nil
}

// ChangeEmail validates and normalizes the login address.
func (u *User) ChangeEmail(email string) error {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// ChangeRole sets the authorization level; empty means RoleUser.
func (u *User) ChangeRole(role Role) error {
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleAdmin {
		return ErrInvalidRole
	}
	u.Role = role
	return nil
}

// SetPassword validates strength and stores the bcrypt hash.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the stored hash with the supplied credentials.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
