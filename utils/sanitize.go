package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// Post fields are plain text; strip every tag.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize removes HTML markup from user supplied text.
func Sanitize(input string) string {
	return html.UnescapeString(sanitizer.Sanitize(input))
}
