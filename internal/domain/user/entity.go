// Package user defines the user domain entity
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Validation errors
var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrNameRequired     = errors.New("name is required")
	ErrNameTooLong      = errors.New("name must be at most 100 characters")
	ErrBioTooLong       = errors.New("bio must be at most 500 characters")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

const (
	maxNameLength = 100
	maxBioLength  = 500
)

// User represents an account in the system. It owns zero or more saved
// recipes; deleting a user cascades to its recipes and sessions.
type User struct {
	id           uuid.UUID
	email        string
	name         string
	passwordHash string
	imageURL     string
	bio          string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates a new user with validation
func NewUser(email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		id:           uuid.New(),
		email:        email,
		name:         name,
		passwordHash: string(hash),
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a user from persisted state. No validation is
// applied; the stored record is the source of truth.
func Reconstruct(id uuid.UUID, email, name, passwordHash, imageURL, bio string, createdAt, updatedAt time.Time) *User {
	return &User{
		id:           id,
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		imageURL:     imageURL,
		bio:          bio,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the user's unique identifier
func (u *User) ID() uuid.UUID { return u.id }

// Email returns the user's email address
func (u *User) Email() string { return u.email }

// Name returns the user's display name
func (u *User) Name() string { return u.name }

// PasswordHash returns the stored bcrypt hash
func (u *User) PasswordHash() string { return u.passwordHash }

// ImageURL returns the profile image URL
func (u *User) ImageURL() string { return u.imageURL }

// Bio returns the free-text bio
func (u *User) Bio() string { return u.bio }

// CreatedAt returns when the account was created
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns when the account was last updated
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// CheckPassword compares a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

// ProfilePatch carries optional profile updates. A nil field is left
// unchanged; this avoids accidental overwrites with zero values.
type ProfilePatch struct {
	Name *string
	Bio  *string
}

// ApplyProfilePatch applies the provided fields with validation and bumps
// updatedAt. An empty patch still bumps updatedAt.
func (u *User) ApplyProfilePatch(patch ProfilePatch) error {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return err
		}
	}
	if patch.Bio != nil && len(*patch.Bio) > maxBioLength {
		return ErrBioTooLong
	}

	if patch.Name != nil {
		u.name = *patch.Name
	}
	if patch.Bio != nil {
		u.bio = *patch.Bio
	}
	u.updatedAt = time.Now()
	return nil
}

// SetImageURL updates the profile image reference
func (u *User) SetImageURL(url string) {
	u.imageURL = url
	u.updatedAt = time.Now()
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ErrInvalidEmail
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}
