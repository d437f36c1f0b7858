// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"quill/internal/models"
)

// forbiddenPostChars matches the characters that are never allowed in post text.
var forbiddenPostChars = regexp.MustCompile(`[~#$%^&]`)

const maxPostTextLen = 50000

// ValidatePostText checks post text against the forbidden character set.
// Comment text is deliberately not checked against it; use ValidateCommentText.
// Failures are typed validation errors so handlers map them to 400s.
func ValidatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("text is required")
	}
	if len(text) > maxPostTextLen {
		return models.NewValidationError(fmt.Sprintf("text must not exceed %d characters", maxPostTextLen))
	}
	if forbiddenPostChars.MatchString(text) {
		return models.NewValidationError("text must not contain special characters (~ # $ % ^ &)")
	}
	return nil
}

// ValidateCommentText checks that comment text is present.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("text is required")
	}
	if len(text) > maxPostTextLen {
		return models.NewValidationError(fmt.Sprintf("text must not exceed %d characters", maxPostTextLen))
	}
	return nil
}
