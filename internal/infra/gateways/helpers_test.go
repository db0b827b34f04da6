//go:build !integration

package gateways

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"shaparak-pay/internal/infra/i18n"
)

func testTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// soapServer answers every POST with the given envelope and captures the last
// request body.
func soapServer(t *testing.T, response string, captured *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if captured != nil {
			*captured = string(b)
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func brokenSOAPServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// formCallback builds an inbound bank callback request with form fields.
func formCallback(target string, fields map[string]string) *http.Request {
	vals := make([]string, 0, len(fields))
	for k, v := range fields {
		vals = append(vals, k+"="+v)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(strings.Join(vals, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
