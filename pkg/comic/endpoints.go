package comic

import (
	"time"

	"comicdl/pkg/config"
)

const (
	// DefaultBaseURL is the per-date strip page prefix; the formatted date is appended
	DefaultBaseURL = "http://dilbert.com/strip/"

	// AttributePattern captures the protocol-relative image URL from the
	// data-image attribute of the strip page.
	AttributePattern = `data-image="(//assets\.amuniversal\.com/[^"]*)"`

	// AttributePrefix turns the protocol-relative capture into an absolute URL
	AttributePrefix = "https:"

	// DirectPattern matches a fully-qualified asset URL anywhere in the page
	DirectPattern = `https://assets\.amuniversal\.com/[^"'\s<>]+`
)

// PageURL builds the strip page URL for a date by appending the formatted
// date to the base URL exactly as configured.
func PageURL(baseURL string, date time.Time) string {
	return baseURL + date.Format(config.DateLayout)
}
