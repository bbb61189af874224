package utils

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"cronify/internal/models"
	"cronify/internal/types"
)

// SanitizeText trims input, strips NUL bytes and invalid UTF-8 and cuts the
// result to at most maxRunes runes. maxRunes <= 0 means no limit.
func SanitizeText(input string, maxRunes int) string {
	cleaned := strings.TrimSpace(input)
	if strings.Contains(cleaned, "\x00") || !utf8.ValidString(cleaned) {
		cleaned = strings.ReplaceAll(strings.ToValidUTF8(cleaned, ""), "\x00", "")
	}

	if maxRunes > 0 && utf8.RuneCountInString(cleaned) > maxRunes {
		cleaned = string([]rune(cleaned)[:maxRunes])
	}
	return cleaned
}

// ParseEmail normalizes raw and accepts a bare address only, no display name.
func ParseEmail(raw string) (string, error) {
	email := models.NormalizeEmail(raw)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", types.ErrValidation)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", types.ErrValidation)
	}
	return email, nil
}
