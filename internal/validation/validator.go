package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pageIDRegex matches cleaned page ids and namespaces: colon separated
// segments of lowercase letters, digits, dots, dashes and underscores
var pageIDRegex = regexp.MustCompile(`^[a-z0-9_.\-]+(?::[a-z0-9_.\-]+)*$`)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator collects the errors found while reading query parameters
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// Errors returns the collected validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Valid reports whether no error was collected
func (v *Validator) Valid() bool {
	return len(v.errors) == 0
}

func (v *Validator) add(field, message string, value interface{}) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message, Value: value})
}

// CleanID normalizes a page id or namespace: lowercased, surrounding
// whitespace and colons removed, slashes read as namespace separators
func CleanID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = strings.ReplaceAll(id, "/", ":")
	return strings.Trim(id, ":")
}

// Namespace validates an optional namespace. Empty means the whole wiki.
func (v *Validator) Namespace(field, raw string) string {
	ns := CleanID(raw)
	if ns == "" {
		return ""
	}
	if !pageIDRegex.MatchString(ns) {
		v.add(field, "invalid namespace", raw)
		return ""
	}
	return ns
}

// PageID validates a required page id
func (v *Validator) PageID(field, raw string) string {
	id := CleanID(raw)
	if id == "" {
		v.add(field, field+" is required", nil)
		return ""
	}
	if !pageIDRegex.MatchString(id) {
		v.add(field, "invalid page id", raw)
		return ""
	}
	return id
}

// Limit reads an optional result limit. Missing or non-numeric values
// yield nil so the caller's default applies.
func (v *Validator) Limit(field, raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// Offset reads an optional non-negative offset
func (v *Validator) Offset(field, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.add(field, field+" must be an integer", raw)
		return 0
	}
	if n < 0 {
		v.add(field, field+" must not be negative", raw)
		return 0
	}
	return n
}

// Count reads an optional non-negative comment count
func (v *Validator) Count(field, raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		v.add(field, field+" must be a non-negative integer", raw)
		return nil
	}
	return &n
}

// Flag reads an optional boolean query flag
func (v *Validator) Flag(field, raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		v.add(field, field+" must be a boolean", raw)
		return false
	}
	return b
}

// OneOf validates raw against allowed values, returning def when raw is empty
func (v *Validator) OneOf(field, raw, def string, allowed ...string) string {
	if raw == "" {
		return def
	}
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	v.add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")), raw)
	return def
}
