package teamengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bgricker/cite-runner/internal/citeerr"
)

const (
	// DefaultRequestTimeout bounds a single HTTP request, including a suite run.
	DefaultRequestTimeout = 120 * time.Second
	// DefaultReadyTimeout bounds the whole readiness wait.
	DefaultReadyTimeout = 60 * time.Second
	// DefaultPollInterval is the pause between readiness probes.
	DefaultPollInterval = 5 * time.Second
)

// Options configure how the client talks to TeamEngine.
type Options struct {
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	ReadyTimeout   time.Duration
	PollInterval   time.Duration
	Logger         *slog.Logger
	// OnProbe, when set, observes the outcome of every readiness probe.
	OnProbe func(ready bool)
}

// Client drives a single TeamEngine instance. A Client is not meant to be
// shared between concurrent suite executions.
type Client struct {
	opts Options
	http *http.Client
	log  *slog.Logger
}

// Credentials authenticate suite executions.
type Credentials struct {
	Username string
	Password string
}

// String shows the username only.
func (c Credentials) String() string {
	return c.Username + ":***"
}

// LogValue keeps the password out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("username", c.Username), slog.String("password", "***"))
}

// New creates a client with the supplied options.
func New(opts Options) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	return &Client{opts: opts, http: httpClient, log: opts.Logger}
}

// EnsureReady polls baseURL until TeamEngine answers with a success status.
// It reports false once the ready timeout or ctx deadline passes, and fails
// only on network errors that polling cannot fix.
func (c *Client) EnsureReady(ctx context.Context, baseURL string) (bool, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return false, err
	}
	probeURL := base + "/"

	ctx, cancel := context.WithTimeout(ctx, c.opts.ReadyTimeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(c.opts.PollInterval), 1)
	for attempt := 1; ; attempt++ {
		// Wait fails straight away when the next slot lies past the deadline.
		if err := limiter.Wait(ctx); err != nil {
			c.log.Warn("teamengine did not become ready", "url", probeURL, "attempts", attempt-1, "timeout", c.opts.ReadyTimeout)
			return false, nil
		}

		ready, err := c.probe(ctx, probeURL)
		if c.opts.OnProbe != nil {
			c.opts.OnProbe(ready)
		}
		if err != nil {
			if ctx.Err() != nil {
				c.log.Warn("teamengine did not become ready", "url", probeURL, "attempts", attempt, "timeout", c.opts.ReadyTimeout)
				return false, nil
			}
			return false, err
		}
		if ready {
			c.log.Debug("teamengine is ready", "url", probeURL, "attempts", attempt)
			return true, nil
		}
	}
}

// probe performs one readiness request. A response that is not a success,
// or a request that times out, means not ready yet.
func (c *Client) probe(ctx context.Context, probeURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false, citeerr.Wrap(citeerr.KindTransport, "readiness probe", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Debug("readiness probe timed out", "url", probeURL)
			return false, nil
		}
		return false, citeerr.Wrap(citeerr.KindTransport, "readiness probe", err)
	}
	drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("teamengine not ready yet", "url", probeURL, "status", resp.StatusCode)
		return false, nil
	}
	return true, nil
}

// Execute runs suiteID with the given inputs and returns the raw result
// document exactly as TeamEngine sent it. TeamEngine holds the request open
// until the suite has finished.
func (c *Client) Execute(ctx context.Context, baseURL, suiteID string, params map[string][]string, creds Credentials) ([]byte, error) {
	const op = "execute suite"

	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	suiteID = strings.TrimSpace(suiteID)
	if suiteID == "" {
		return nil, citeerr.New(citeerr.KindSuiteNotFound, op, "empty suite identifier")
	}

	runURL := fmt.Sprintf("%s/rest/suites/%s/run", base, url.PathEscape(suiteID))
	if query := url.Values(params).Encode(); query != "" {
		runURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, runURL, nil)
	if err != nil {
		return nil, citeerr.Wrap(citeerr.KindTransport, op, err)
	}
	req.Header.Set("Accept", "application/xml")
	req.SetBasicAuth(creds.Username, creds.Password)

	c.log.Debug("requesting suite execution", "suite", suiteID, "url", runURL, "credentials", creds)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, citeerr.Wrap(citeerr.KindTransport, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		drain(resp.Body)
		return nil, citeerr.Newf(citeerr.KindAuthentication, op, "teamengine rejected credentials for user %q (HTTP %d)", creds.Username, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return nil, citeerr.Newf(citeerr.KindSuiteNotFound, op, "suite %q", suiteID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		drain(resp.Body)
		return nil, citeerr.Newf(citeerr.KindTransport, op, "unexpected HTTP status %d from %s", resp.StatusCode, runURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, citeerr.Wrap(citeerr.KindTransport, op, err)
	}
	c.log.Debug("suite execution finished", "suite", suiteID, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

func normalizeBaseURL(raw string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(base)
	if err != nil {
		return "", citeerr.Wrap(citeerr.KindTransport, "parse base url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", citeerr.Newf(citeerr.KindTransport, "parse base url", "%q is not an http(s) URL", raw)
	}
	return base, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
