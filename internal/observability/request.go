package observability

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestContext describes one inbound request
type RequestContext struct {
	RequestID string
	Method    string
	URL       string
	ClientIP  string
	UserAgent string
	StartTime time.Time
}

// NewRequestID returns a time-ordered random id
func NewRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewRequestContext captures the request attributes used for logs and spans
func NewRequestContext(r *http.Request, requestID string, start time.Time) RequestContext {
	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = UnknownValue
	}
	return RequestContext{
		RequestID: requestID,
		Method:    r.Method,
		URL:       requestURL(r),
		ClientIP:  ClientIP(r.Header),
		UserAgent: userAgent,
		StartTime: start,
	}
}

// Fields returns the logger binding for the request
func (rc RequestContext) Fields() Fields {
	return Fields{
		"requestId": rc.RequestID,
		"method":    rc.Method,
		"url":       rc.URL,
		"ip":        rc.ClientIP,
		"userAgent": rc.UserAgent,
	}
}

func requestURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	u := *r.URL
	u.Scheme = scheme
	u.Host = r.Host
	return u.String()
}
