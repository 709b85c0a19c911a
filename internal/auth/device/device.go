package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Info summarizes the client software behind a login attempt, extracted from
// the User-Agent header. Used for login log records only, never for
// authentication decisions.
type Info struct {
	Browser string
	OS      string
	// DisplayName is a human-readable summary, e.g. "Chrome 120 on Linux".
	DisplayName string
}

// Parse extracts browser and OS information from a User-Agent string.
// Unknown or empty input yields "unknown" fields rather than an error.
func Parse(userAgentString string) Info {
	if userAgentString == "" {
		return Info{Browser: "unknown", OS: "unknown", DisplayName: "unknown"}
	}

	ua := useragent.New(userAgentString)
	browser, version := ua.Browser()

	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "unknown"
	}

	majorVersion := ""
	if version != "" {
		parts := strings.Split(version, ".")
		if len(parts) > 0 && parts[0] != "" {
			majorVersion = parts[0]
		}
	}

	os := strings.TrimSpace(ua.OS())
	if os == "" {
		os = "unknown"
	}

	display := browser
	if majorVersion != "" {
		display += " " + majorVersion
	}
	display += " on " + os

	return Info{
		Browser:     browser,
		OS:          os,
		DisplayName: display,
	}
}
