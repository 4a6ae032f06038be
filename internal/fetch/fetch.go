// Package fetch downloads pages for extraction: bounded retries with
// exponential backoff, redirect and scheme limits, content-type gating,
// charset decoding and an optional on-disk revalidating cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/hyperifyio/goextract/internal/cache"
)

const (
	defaultRedirectMaxHops = 10
	defaultRetryBackoff    = 600 * time.Millisecond
)

// Client wraps http.Client. It is safe for concurrent use.
type Client struct {
	HTTPClient     *http.Client
	UserAgent      string
	AcceptLanguage string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// RetryBackoff is the backoff factor: retry n sleeps factor * 2^(n-1).
	RetryBackoff time.Duration
	// RedirectMaxHops caps redirect following. Zero means 10.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests. Zero means unlimited.
	MaxConcurrent int
	// Cache is optional. BypassCache skips revalidation but still saves.
	Cache       *cache.PageCache
	BypassCache bool

	limiter     chan struct{}
	limiterOnce sync.Once
}

// Response is a fetched page.
type Response struct {
	// URL is the final URL after redirects.
	URL         string
	ContentType string
	Body        []byte
	Status      int
	FromCache   bool
}

// Text decodes Body to UTF-8 using the Content-Type charset, then <meta>
// sniffing, then UTF-8.
func (r *Response) Text() string {
	s, err := Decode(r.Body, r.ContentType)
	if err != nil {
		return string(r.Body)
	}
	return s
}

// Decode converts body to UTF-8.
func Decode(body []byte, contentType string) (string, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return string(body), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirect()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirect()}
}

// Get fetches rawURL. Failures are always *Error.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}
	if !isHTTPScheme(u) || u.Host == "" {
		return nil, &Error{Kind: KindInvalidURL, URL: rawURL, Err: ErrUnsupportedScheme}
	}
	target := u.String()

	var cached *cache.Entry
	if c.Cache != nil && !c.BypassCache {
		if e, err := c.Cache.Load(ctx, target); err == nil {
			cached = e
		}
	}

	attempts := max(c.MaxAttempts, 1)
	backoff := c.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	var lastErr *Error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := backoff << (i - 1)
			log.Debug().Str("url", target).Int("attempt", i+1).Dur("backoff", wait).Err(lastErr).Msg("retrying fetch")
			select {
			case <-ctx.Done():
				return nil, &Error{Kind: classify(ctx.Err()), URL: target, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}
		resp, ferr := c.tryOnce(ctx, target, cached)
		if ferr == nil && resp.Status == http.StatusNotModified {
			if r := c.fromCache(ctx, target, cached); r != nil {
				return r, nil
			}
			log.Debug().Str("url", target).Msg("cached body unreadable, refetching without validators")
			cached = nil
			resp, ferr = c.tryOnce(ctx, target, nil)
		}
		if ferr == nil {
			if resp.Status == http.StatusNotModified {
				return nil, &Error{Kind: KindHTTP, URL: target, Status: resp.Status}
			}
			return c.finish(ctx, target, resp), nil
		}
		lastErr = ferr
		if !retryable(ferr) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// fromCache serves a 304 from the cache. It returns nil when the cached
// body cannot be read.
func (c *Client) fromCache(ctx context.Context, target string, cached *cache.Entry) *Response {
	if cached == nil || c.Cache == nil {
		return nil
	}
	body, err := c.Cache.Body(ctx, target)
	if err != nil {
		return nil
	}
	return &Response{
		URL:         cached.FinalURL,
		ContentType: cached.ContentType,
		Body:        body,
		Status:      http.StatusOK,
		FromCache:   true,
	}
}

// finish stores fresh 200s in the cache.
func (c *Client) finish(ctx context.Context, target string, resp *attempt) *Response {
	if c.Cache != nil && resp.Status == http.StatusOK {
		e := cache.Entry{
			URL:          target,
			FinalURL:     resp.URL,
			ContentType:  resp.ContentType,
			ETag:         resp.etag,
			LastModified: resp.lastModified,
		}
		if err := c.Cache.Save(ctx, e, resp.Body); err != nil {
			log.Debug().Err(err).Str("url", target).Msg("cache save failed")
		}
	}
	return resp.Response
}

type attempt struct {
	*Response
	etag, lastModified string
}

func (c *Client) tryOnce(ctx context.Context, target string, cached *cache.Entry) (*attempt, *Error) {
	c.acquire()
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, URL: target, Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.AcceptLanguage)
	}
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &Error{Kind: classify(err), URL: target, Err: err}
	}
	defer resp.Body.Close()

	final := target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	ct := resp.Header.Get("Content-Type")
	a := &attempt{
		Response:     &Response{URL: final, ContentType: ct, Status: resp.StatusCode},
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.StatusCode == http.StatusNotModified {
		return a, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{Kind: KindHTTP, URL: target, Status: resp.StatusCode}
	}
	if !isAllowedHTMLContentType(ct) {
		return nil, &Error{Kind: KindUnsupportedContentType, URL: target, Err: fmt.Errorf("%w: %s", ErrUnsupportedContentType, ct)}
	}
	a.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, URL: target, Err: err}
		}
		return nil, &Error{Kind: KindRead, URL: target, Err: err}
	}
	return a, nil
}

func (c *Client) checkRedirect() func(req *http.Request, via []*http.Request) error {
	hops := c.RedirectMaxHops
	if hops <= 0 {
		hops = defaultRedirectMaxHops
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= hops {
			return ErrTooManyRedirects
		}
		if !isHTTPScheme(req.URL) {
			return ErrUnsupportedScheme
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedHTMLContentType accepts HTML, XHTML and a missing header.
func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	<-c.limiter
}
