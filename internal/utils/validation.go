package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxBudget bounds budget parameters, in 10,000 KRW.
const MaxBudget = 10_000_000

var (
	// Entity ids are ASCII, e.g. dong-001
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

	// Detect potentially dangerous characters - more focused on injection patterns
	dangerousPattern = regexp.MustCompile(`[<>]|--|\/\*|\*\/|;.*--`)

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateSessionID accepts only canonical UUIDs.
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("session id must be a UUID")
	}
	return nil
}

// ValidateQuery validates search query strings. Hangul is allowed; length
// is counted in bytes.
func ValidateQuery(query string) error {
	if query == "" {
		return nil
	}

	if len(query) > 200 {
		return errors.New("query too long (max 200 characters)")
	}

	if dangerousPattern.MatchString(query) {
		return errors.New("query contains invalid characters")
	}

	return nil
}

func ValidateBudget(budget float64) error {
	if budget < 0 {
		return errors.New("budget must be non-negative")
	}
	if budget > MaxBudget {
		return errors.New("budget too large (max 10000000)")
	}
	return nil
}

// SanitizeInput removes HTML tags and surrounding whitespace.
func SanitizeInput(input string) string {
	sanitized := htmlTagPattern.ReplaceAllString(input, "")
	return strings.TrimSpace(sanitized)
}

// ValidateAndSanitizeQuery validates and sanitizes a search query
func ValidateAndSanitizeQuery(query string) (string, error) {
	if err := ValidateQuery(query); err != nil {
		return "", err
	}

	return SanitizeInput(query), nil
}
