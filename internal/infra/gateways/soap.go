package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// soapClient performs one-shot SOAP calls against bank web services. No
// retries: a failed call surfaces as a failed result and the caller decides
// whether to start a fresh request.
type soapClient struct {
	client *http.Client
}

func newSOAPClient(timeout time.Duration) *soapClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &soapClient{client: &http.Client{Timeout: timeout}}
}

// Call posts the envelope and returns the raw response body. soapAction may be
// empty for services that route on the body alone.
func (c *soapClient) Call(ctx context.Context, url, soapAction, envelope string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	if soapAction != "" {
		req.Header.Set("SOAPAction", soapAction)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway responded with http %d", resp.StatusCode)
	}
	return string(body), nil
}

// xmlEscape escapes invoice-supplied values interpolated into envelopes.
func xmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}
