// Package api is the signed HTTP JSON client for the deployment service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"launchpd/internal/logging"
)

// Header names understood by the service.
const (
	HeaderAPIKey      = "X-API-Key"
	HeaderFingerprint = "X-Device-Fingerprint"
	HeaderTimestamp   = "X-Timestamp"
	HeaderSignature   = "X-Signature"
	HeaderTwoFactor   = "X-2FA-Code"
)

// Client talks to the deployment service.
type Client struct {
	baseURL     string
	apiKey      string
	apiSecret   string
	fingerprint string
	httpClient  *http.Client
	now         func() time.Time
}

// Config holds client configuration.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	// Fingerprint overrides the computed device fingerprint.
	Fingerprint string
	HTTPClient  *http.Client
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = Fingerprint()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		fingerprint: cfg.Fingerprint,
		httpClient:  httpClient,
		now:         time.Now,
	}
}

// WithCredentials returns a copy of the client that authenticates as key.
func (c *Client) WithCredentials(key, secret string) *Client {
	clone := *c
	clone.apiKey = key
	clone.apiSecret = secret
	return &clone
}

// BaseURL is the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs one call. A []byte body is sent verbatim, any other
// non-nil body as JSON. When out is non-nil a successful response body is
// decoded into it. Failures with a response are returned as *Error;
// connectivity failures as *Error of KindNetwork; anything else unchanged.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	var payload []byte
	contentType := ""
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
		contentType = "application/octet-stream"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = data
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderFingerprint, c.fingerprint)
	if c.apiSecret != "" {
		ts := strconv.FormatInt(c.now().UnixMilli(), 10)
		req.Header.Set(HeaderTimestamp, ts)
		req.Header.Set(HeaderSignature, Sign(c.apiSecret, method, path, ts, payload))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log := logging.Named("api")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		if isTransportError(err) {
			return &Error{Kind: KindNetwork, Message: "could not reach " + c.baseURL, Err: err}
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "connection dropped while reading response", Err: err}
	}
	log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return classify(resp.StatusCode, eb)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// isTransportError reports connectivity-level failures: DNS, dial, reset
// and timeouts. Cancellation by the caller is not one.
func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
