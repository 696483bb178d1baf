// Package httpclient builds the resty clients shared by the scraper, the
// price providers and the notifier.
package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// New creates a resty client with a timeout, a User-Agent and optional proxy.
// Retries stay disabled: a failed request is reported to the caller as is.
func New(timeout time.Duration, userAgent, proxyURL string) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return client
}
