package observability

import (
	"net/http"
	"strings"
)

// UnknownValue is reported when a request attribute cannot be determined
const UnknownValue = "unknown"

// ClientIP derives the caller address from proxy headers: the first entry of
// X-Forwarded-For, then X-Real-IP, then "unknown".
func ClientIP(h http.Header) string {
	if fwd := h.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(h.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return UnknownValue
}
