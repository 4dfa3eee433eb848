package validation

import (
	"net/url"
	"strings"
)

// ValidateURL checks that an optional URL is absolute http or https.
// Empty strings are accepted.
func ValidateURL(urlString, fieldName string) error {
	if urlString == "" {
		return nil
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return Fail(fieldName, "invalid URL format")
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme == "" {
		return Fail(fieldName, "URL must include a scheme (http:// or https://)")
	}
	if scheme != "http" && scheme != "https" {
		return Fail(fieldName, "URL scheme must be http or https")
	}
	if parsedURL.Host == "" {
		return Fail(fieldName, "URL must include a host")
	}
	return nil
}
