package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"alice@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"no-at-sign.example.com", false},
		{"trailing@domain", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidateEmail(tt.email), tt.email)
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+1 (555) 123-4567", true},
		{"5551234567", true},
		{"12345", false},
		{"call me maybe", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidatePhone(tt.phone), tt.phone)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://linkedin.com/in/alice", true},
		{"http://example.com", true},
		{"ftp://example.com/file", false},
		{"linkedin.com/in/alice", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidateURL(tt.url), tt.url)
	}
}
