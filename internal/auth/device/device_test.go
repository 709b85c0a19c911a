package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		userAgent   string
		wantBrowser string
		wantOS      string
		wantDisplay string
	}{
		{
			name:        "chrome on linux",
			userAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			wantBrowser: "Chrome",
			wantOS:      "Linux x86_64",
			wantDisplay: "Chrome 120 on Linux x86_64",
		},
		{
			name:        "firefox on windows",
			userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			wantBrowser: "Firefox",
			wantOS:      "Windows 10",
			wantDisplay: "Firefox 121 on Windows 10",
		},
		{
			name:        "empty input",
			userAgent:   "",
			wantBrowser: "unknown",
			wantOS:      "unknown",
			wantDisplay: "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.userAgent)
			assert.Equal(t, tt.wantBrowser, info.Browser)
			assert.Equal(t, tt.wantOS, info.OS)
			assert.Equal(t, tt.wantDisplay, info.DisplayName)
		})
	}
}

func TestParseGarbageInput(t *testing.T) {
	info := Parse("not a real user agent")

	assert.NotEmpty(t, info.Browser)
	assert.NotEmpty(t, info.OS)
	assert.NotEmpty(t, info.DisplayName)
}
