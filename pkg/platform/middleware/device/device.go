package device

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"orcs/pkg/requestcontext"
)

// Device labels the visitor's device from the User-Agent already placed in
// context by the metadata middleware, e.g. "Firefox on Linux".
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			ctx = requestcontext.WithDeviceLabel(ctx, Label(ua))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Label returns "Browser on OS", or the mobile platform for phones.
func Label(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	if ua.Bot() {
		return "Bot"
	}

	browser, _ := ua.Browser()
	os := ua.OSInfo().Name

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
