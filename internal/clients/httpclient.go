// Package clients implements the external data-source collaborators consumed
// by the enrichment pipeline: the package registries, the OSV vulnerability
// database, the source-repository API, and the local lifecycle table.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

var logger = util.InitLogger() // setup the logger

const (
	defaultTimeout = 15 * time.Second
	retryAttempts  = 3
	retryDelay     = 500 * time.Millisecond
)

// NewHTTPClient returns the shared HTTP client used by all collaborators.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs a GET and decodes the response body into out, retrying
// transient failures (429 and 5xx). Non-2xx terminal responses surface as
// util.APIError so callers can classify them.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	return util.Retry(retryAttempts, retryDelay, func() error {
		return doJSON(ctx, client, http.MethodGet, url, headers, nil, out)
	})
}

// postJSON performs a POST with a JSON body, with the same retry policy.
func postJSON(ctx context.Context, client *http.Client, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request for %s: %w", url, err)
	}
	return util.Retry(retryAttempts, retryDelay, func() error {
		return doJSON(ctx, client, http.MethodPost, url, nil, payload, out)
	})
}

func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &util.APIError{StatusCode: resp.StatusCode, URL: url}
		if apiErr.IsRateLimited() || apiErr.IsServerError() {
			return apiErr // retried
		}
		return backoffPermanent(apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoffPermanent(fmt.Errorf("decode response from %s: %w", url, err))
	}
	return nil
}

// backoffPermanent marks an error as non-retryable for util.Retry.
func backoffPermanent(err error) error {
	return backoff.Permanent(err)
}
