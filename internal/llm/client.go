package llm

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// RequestTimeout bounds the single provider call made per command.
const RequestTimeout = 30 * time.Second

const maxResponseBytes = 1 << 20

// Client sends one rewrite request to a configured provider.
type Client struct {
	Config ProviderConfig
	HTTP   *http.Client
}

// NewClient returns a Client with the standard request timeout.
func NewClient(cfg ProviderConfig) *Client {
	return &Client{
		Config: cfg.WithDefaults(),
		HTTP:   &http.Client{Timeout: RequestTimeout},
	}
}

// NewTransformer adapts NewClient to a Factory.
func NewTransformer(cfg ProviderConfig) Transformer {
	return NewClient(cfg)
}

func (c *Client) Transform(ctx context.Context, text string) (string, error) {
	if c.Config.Endpoint == "" {
		return "", ErrNoEndpoint
	}

	body, err := json.Marshal(buildPayload(c.Config, BuildPrompt(text)))
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", configError("invalid LLM API endpoint %q: %v", c.Config.Endpoint, err)
	}
	req.Header = buildHeaders(c.Config)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if isConnectError(err) {
			return "", connectivityError(err)
		}
		return "", fmt.Errorf("llm: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", upstreamError(resp.StatusCode, reasonPhrase(resp))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	return ExtractJSON(data)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: RequestTimeout}
}

// isConnectError reports whether err happened before the provider sent a
// response: name resolution, dialing, the TLS handshake, or the connection
// dropping before any response headers arrived.
func isConnectError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	return errors.Is(err, http.ErrSchemeMismatch) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}

// reasonPhrase returns the text after the status code in resp.Status,
// falling back to the standard phrase.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
