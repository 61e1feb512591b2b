// Package validator provides input validation and sanitization for
// addresses, domains, labels and paging.
package validator

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidDomain    = errors.New("invalid domain format")
	ErrInvalidLocalPart = errors.New("invalid local part format")
	ErrInputTooLong     = errors.New("input exceeds maximum length")
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrInvalidColor     = errors.New("color must be a #rrggbb hex value")
)

// Regex patterns for validation
var (
	// Domain regex: allows lowercase alphanumeric, hyphens, and dots
	// Must start and end with alphanumeric, labels max 63 chars
	domainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)

	// Local part regex: allows lowercase alphanumeric, dots, underscores, hyphens
	// Must start with alphanumeric, max 64 chars
	localPartRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._+-]{0,63}$`)

	colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// ValidateEmail checks a bare address: at most 254 characters and parseable
// as RFC 5322.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	switch {
	case email == "":
		return ErrEmptyInput
	case utf8.RuneCountInString(email) > 254:
		return ErrInputTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateDomain checks a DNS name of at most 253 characters
func ValidateDomain(domain string) error {
	domain = strings.TrimSpace(strings.ToLower(domain))
	switch {
	case domain == "":
		return ErrEmptyInput
	case len(domain) > 253:
		return ErrInputTooLong
	case !domainRegex.MatchString(domain):
		return ErrInvalidDomain
	}
	return nil
}

// ValidateLocalPart checks the part of a mailbox address before the "@"
func ValidateLocalPart(localPart string) error {
	localPart = strings.TrimSpace(strings.ToLower(localPart))
	switch {
	case localPart == "":
		return ErrEmptyInput
	case len(localPart) > 64:
		return ErrInputTooLong
	case !localPartRegex.MatchString(localPart):
		return ErrInvalidLocalPart
	}
	return nil
}

// SplitAddress validates a bare address and returns its lowercased parts
func SplitAddress(address string) (localPart, domain string, err error) {
	address = strings.TrimSpace(strings.ToLower(address))
	if err := ValidateEmail(address); err != nil {
		return "", "", err
	}
	at := strings.LastIndex(address, "@")
	if at <= 0 || at == len(address)-1 {
		return "", "", ErrInvalidEmail
	}
	return address[:at], address[at+1:], nil
}

// ParseAddressList accepts comma separated lists and bracketed forms
// ("Alice <alice@team.co>") and returns lowercased bare addresses without
// duplicates, in input order.
func ParseAddressList(values ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		list, err := mail.ParseAddressList(v)
		if err != nil {
			return nil, ErrInvalidEmail
		}
		for _, a := range list {
			addr := strings.ToLower(a.Address)
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out, nil
}

// ValidateColor accepts an empty color or a #rrggbb value
func ValidateColor(color string) error {
	if color == "" || colorRegex.MatchString(color) {
		return nil
	}
	return ErrInvalidColor
}

// Pagination constants
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination clamps page and limit and derives the row offset
func ValidatePagination(page, limit int) (int, int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, (page - 1) * limit
}

// SanitizeFilename makes an attachment name safe to store and to echo in a
// Content-Disposition header. Path separators and ".." collapse to "_".
func SanitizeFilename(filename string) string {
	filename = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(filename)
	filename = truncate(strings.TrimSpace(stripControl(filename)), 255)
	if filename == "" {
		return "unnamed"
	}
	return filename
}

// SanitizeString drops control characters, trims and caps the length at
// maxLength runes when maxLength is positive.
func SanitizeString(input string, maxLength int) string {
	return truncate(strings.TrimSpace(stripControl(input)), maxLength)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
