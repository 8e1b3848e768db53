package disqus

import (
	"net/http"
	"time"
)

type options struct {
	baseURL    string
	apiVersion string
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
}

type Option func(*options)

// BaseURL points the client at another host, e.g. a test server.
func BaseURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.baseURL = url
		}
	}
}

func APIVersion(version string) Option {
	return func(o *options) {
		if version != "" {
			o.apiVersion = version
		}
	}
}

// Timeout bounds a single request. Ignored when HTTPClient is given.
func Timeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func UserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

func HTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}
