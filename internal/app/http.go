package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns a client shared by every worker. The pool is sized
// for the batch worker count; per-attempt deadlines come from the fetch
// client's context, so the client-wide timeout is only a backstop.
func newHTTPClient(workers int) *http.Client {
	perHost := max(workers*2, 16)
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          perHost * 4,
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   2 * time.Minute,
	}
}
