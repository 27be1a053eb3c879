package clients

import (
	"net"
	"net/http"
	"time"
)

// DefaultTransport caps per-host connections so a slow dependency cannot
// accumulate unbounded goroutines waiting on sockets.
func DefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxConnsPerHost:       50,
		MaxIdleConnsPerHost:   10,
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

// NewHTTPClient returns a client on DefaultTransport with an overall timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Transport: DefaultTransport(), Timeout: timeout}
}
