package web

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var labelPolicy = bluemonday.StrictPolicy()

// plainLabel strips any markup from a display label and returns plain text.
func plainLabel(s string) string {
	return strings.TrimSpace(html.UnescapeString(labelPolicy.Sanitize(s)))
}

// launchCSP builds the Content-Security-Policy for a launch page. Only the
// nonced script may run. form-action admits any origin of the endpoint's
// scheme family because login endpoints redirect to per-org hosts after the
// post, and browsers check those redirects against form-action too.
func launchCSP(action, nonce string) string {
	formAction := "'none'"
	if u, err := url.Parse(action); err == nil && u.Host != "" {
		switch u.Scheme {
		case "https":
			formAction = "https:"
		case "http":
			formAction = "http: https:"
		}
	}
	return "default-src 'none'; script-src 'nonce-" + nonce + "'; form-action " + formAction +
		"; base-uri 'none'; frame-ancestors 'none'"
}
