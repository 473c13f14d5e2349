package validate

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/models"
)

// urlPattern accepts http, https, ftp and ftps URLs whose host is a dotted
// domain, a single-label name, localhost or a dotted-quad address, followed by
// an optional port and an optional path or query.
var urlPattern = regexp.MustCompile(`(?i)^(?:http|ftp)s?://` +
	`(?:` +
	`(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)` +
	`|localhost` +
	`|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}` +
	`|[A-Z][A-Z0-9-]{0,61}[A-Z0-9]` +
	`)` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// IsValidURL reports whether s is structurally a valid URL. No lookup is made.
func IsValidURL(s string) bool {
	return urlPattern.MatchString(s)
}

// OriginalURL validates a URL submitted for shortening.
func OriginalURL(s string) error {
	if s == "" {
		return apperr.Validation("Original url is required")
	}
	if utf8.RuneCountInString(s) > models.OriginalURLMaxLen {
		return apperr.Validation(fmt.Sprintf("Url must be at most %d characters", models.OriginalURLMaxLen))
	}
	if !IsValidURL(s) {
		return apperr.Format("Url not valid, url example: http://www....")
	}
	return nil
}
