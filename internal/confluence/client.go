// Package confluence implements the wiki upsert client: resolving whether an
// attachment or page already exists and performing an idempotent
// create-or-update against the Confluence REST API.
package confluence

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// defaultTimeout bounds every individual wiki request.
	defaultTimeout = 30 * time.Second

	// retryMax is the number of retries after the first attempt, giving
	// five attempts total before a failing status is surfaced.
	retryMax = 4

	// retryWaitMin seeds the exponential backoff between attempts.
	retryWaitMin = 600 * time.Millisecond
	retryWaitMax = 10 * time.Second
)

// Outcome reports whether an upsert created a new remote object or updated an
// existing one.
type Outcome string

const (
	Created Outcome = "created"
	Updated Outcome = "updated"
)

// StatusError is a non-success HTTP response from the wiki, carrying the
// status code and response body for diagnosis.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("confluence returned %d: %s", e.Code, e.Body)
}

// Options configures a Client.
type Options struct {
	// Timeout bounds each request (default 30s).
	Timeout time.Duration

	// InsecureSkipVerify disables certificate verification for this client
	// only. Scoped to wikis behind internal or self-signed certificates;
	// never applied process-wide.
	InsecureSkipVerify bool
}

// Client talks to a single Confluence instance with basic auth. GET and POST
// requests go through a retrying session (429/5xx, exponential backoff); PUT
// requests are sent once, since a version-conflict rejection must surface
// immediately.
type Client struct {
	base string
	user string
	pass string

	retrying *retryablehttp.Client
	direct   *http.Client
}

// NewClient builds a client for the Confluence instance at base.
func NewClient(base, user, pass string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.CheckRetry = checkRetry
	rc.Logger = nil
	rc.HTTPClient = &http.Client{Timeout: timeout, Transport: transport}

	return &Client{
		base:     base,
		user:     user,
		pass:     pass,
		retrying: rc,
		direct:   &http.Client{Timeout: timeout, Transport: transport},
	}
}

// checkRetry retries transport errors and 429/5xx statuses. Method filtering
// is structural: only GET and POST are issued through the retrying session.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}

// get issues a GET through the retrying session and returns the body of a 2xx
// response. Non-2xx becomes a StatusError after retries are exhausted.
func (c *Client) get(ctx context.Context, url string, query map[string]string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.user, c.pass)

	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.retrying.Do(req)
	if err != nil {
		return nil, err
	}
	return readResponse(resp)
}

// post issues a POST through the retrying session. The body is a byte slice
// so the session can replay it on retry.
func (c *Client) post(ctx context.Context, url, contentType string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.SetBasicAuth(c.user, c.pass)

	resp, err := c.retrying.Do(req)
	if err != nil {
		return nil, err
	}
	return readResponse(resp)
}

// put issues a single PUT with no retries. The wiki rejects writes carrying a
// stale version number; replaying those automatically would mask conflicts.
func (c *Client) put(ctx context.Context, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.user, c.pass)

	resp, err := c.direct.Do(req)
	if err != nil {
		return nil, err
	}
	return readResponse(resp)
}

// readResponse drains the body and converts non-2xx statuses to StatusError.
func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
