package validation

import (
	"regexp"

	"quill/internal/models"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return models.NewValidationError("username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return models.NewValidationError("username must not exceed 30 characters")
	}
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError("username can only contain letters, numbers, underscores, and hyphens")
	}
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return models.NewValidationError("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("invalid email format")
	}
	if len(email) > 254 {
		return models.NewValidationError("email must not exceed 254 characters")
	}
	return nil
}

// ValidatePassword checks if a password meets minimum requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return models.NewValidationError("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return models.NewValidationError("password must not exceed 128 characters")
	}
	return nil
}
