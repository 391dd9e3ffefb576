// Package user defines the user domain entity
package user

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ReservedUsername is the path sentinel for the current user and cannot be registered.
const ReservedUsername = "me"

const (
	maxUsernameLength = 150
	maxEmailLength    = 254
	maxNameLength     = 150
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Domain errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidUsername   = errors.New("username may contain only letters, digits and @/./+/-/_ characters")
	ErrUsernameTooLong   = errors.New("username must not exceed 150 characters")
	ErrReservedUsername  = errors.New(`username "me" is reserved`)
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrNameTooLong       = errors.New("first and last name must not exceed 150 characters")
	ErrEmptyPasswordHash = errors.New("password hash is required")
	ErrEmailTaken        = errors.New("email already registered")
	ErrUsernameTaken     = errors.New("username already taken")
)

// User represents a user in the system
type User struct {
	id           int64
	username     string
	email        string
	firstName    string
	lastName     string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates a new user with validation. The password must already be hashed.
func NewUser(username, email, firstName, lastName, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(firstName) > maxNameLength || utf8.RuneCountInString(lastName) > maxNameLength {
		return nil, ErrNameTooLong
	}
	if passwordHash == "" {
		return nil, ErrEmptyPasswordHash
	}

	now := time.Now().UTC()
	return &User{
		username:     username,
		email:        email,
		firstName:    strings.TrimSpace(firstName),
		lastName:     strings.TrimSpace(lastName),
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ValidateUsername checks the handle format and the reserved sentinel.
func ValidateUsername(username string) error {
	if strings.EqualFold(username, ReservedUsername) {
		return ErrReservedUsername
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return ErrUsernameTooLong
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// Restore rebuilds a user from storage.
func Restore(id int64, username, email, firstName, lastName, passwordHash string, createdAt, updatedAt time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		email:        email,
		firstName:    firstName,
		lastName:     lastName,
		passwordHash: passwordHash,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// AssignID is called by the repository once the user is stored.
func (u *User) AssignID(id int64) { u.id = id }

func (u *User) ID() int64            { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) Email() string        { return u.email }
func (u *User) FirstName() string    { return u.firstName }
func (u *User) LastName() string     { return u.lastName }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Profile is a user as seen by a viewer.
type Profile struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	IsSubscribed bool
}

// ToProfile projects the user for a viewer; subscribed says whether the
// viewer follows this user.
func (u *User) ToProfile(subscribed bool) Profile {
	return Profile{
		ID:           u.id,
		Username:     u.username,
		Email:        u.email,
		FirstName:    u.firstName,
		LastName:     u.lastName,
		IsSubscribed: subscribed,
	}
}
