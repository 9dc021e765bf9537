package validator

import (
	"fmt"
	"strings"

	"github.com/okonenko/pharos/internal/models"
)

// maxStoryTextLen leaves headroom under Telegram's 4096-character message
// limit once the template is wrapped around the text.
const maxStoryTextLen = 3500

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Validator struct {
	errors []ValidationError
}

func New() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

func (v *Validator) ErrorMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v.errors {
		result[err.Field] = err.Message
	}
	return result
}

// ValidateStorySubmission rejects story payloads the relay should not
// forward. Visitor records are deliberately not validated beyond JSON shape:
// partial records are legitimate probe degradation.
func ValidateStorySubmission(story models.StorySubmission) error {
	v := New()

	if strings.TrimSpace(story.Text) == "" {
		v.AddError("text", "required")
	}
	if len(story.Text) > maxStoryTextLen {
		v.AddError("text", "too long")
	}
	if story.ChapterID < 0 {
		v.AddError("chapter_id", "must not be negative")
	}

	if !v.IsValid() {
		return fmt.Errorf("validation failed: %v", v.ErrorMap())
	}
	return nil
}

// SanitizeString strips NUL bytes and non-printable control characters.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	var result strings.Builder
	for _, r := range s {
		if r >= 32 || r == '\n' || r == '\t' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Truncate clamps s to at most max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
