// Package validation holds field-format checks shared by the intake surface.
// Structured request bodies are validated against JSON schemas at the API
// layer; these helpers cover the individual identity fields that arrive as
// multipart form values.
package validation

import "regexp"

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{7,}$`)
	urlPattern   = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// ValidateEmail reports whether the value looks like a deliverable address.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone accepts international formats with separators.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateURL accepts http and https profile links.
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}
