package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// Account field limits, matching what the sign-up form enforces.
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MaxNameLength     = 200
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks that email looks like an address.
func ValidateEmail(email string) error {
	if email == "" {
		return New(ErrCodeInvalidInput, "email is required")
	}
	if !emailRegex.MatchString(email) {
		return New(ErrCodeInvalidInput, "please provide a valid email address")
	}
	return nil
}

// ValidateUsername checks the username length after trimming.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return New(ErrCodeInvalidInput, "username is required")
	}
	if len([]rune(username)) < MinUsernameLength {
		return New(ErrCodeInvalidInput, "username must be at least %d characters long", MinUsernameLength)
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if password == "" {
		return New(ErrCodeInvalidInput, "password is required")
	}
	if len(password) < MinPasswordLength {
		return New(ErrCodeInvalidInput, "password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

// ValidateName validates a project or template name.
//
// Rules:
//   - Not empty after trimming
//   - Maximum length of 200 characters
//   - No control characters
func ValidateName(kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name is required", kind)
	}
	if len([]rune(name)) > MaxNameLength {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}
	return nil
}

// safeSchemes are the URL schemes an element may link or embed.
var safeSchemes = []string{"http://", "https://", "mailto:", "tel:"}

// ValidateURL validates a user-supplied link or media URL.
// Empty, relative, fragment and http(s)/mailto/tel URLs are accepted;
// anything with another scheme (javascript:, file:, vbscript:) is rejected.
// Data URLs are accepted only when allowData is set (image sources).
func ValidateURL(rawURL string, allowData bool) error {
	u := strings.TrimSpace(rawURL)
	if u == "" || strings.HasPrefix(u, "#") || strings.HasPrefix(u, "/") || strings.HasPrefix(u, "./") {
		return nil
	}
	for _, r := range u {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "URL contains invalid characters")
		}
	}
	lower := strings.ToLower(u)
	for _, s := range safeSchemes {
		if strings.HasPrefix(lower, s) {
			return nil
		}
	}
	if strings.HasPrefix(lower, "data:") {
		if allowData && strings.HasPrefix(lower, "data:image/") {
			return nil
		}
		return New(ErrCodeInvalidInput, "data URLs are only allowed for images")
	}
	colon := strings.IndexByte(u, ':')
	slash := strings.IndexByte(u, '/')
	if colon >= 0 && (slash < 0 || colon < slash) {
		return New(ErrCodeInvalidInput, "URL scheme not allowed: %q", u[:colon])
	}
	return nil
}
