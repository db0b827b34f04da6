//go:build !integration

package gateways

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGatewayRedirect(t *testing.T) {
	t.Run("302 with merged query", func(t *testing.T) {
		tr := NewGatewayRedirect("https://pec.shaparak.ir/NewIPG/?x=1", url.Values{"Token": {"T1"}})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/pay", nil)

		if err := tr.Transport(rec, req); err != nil {
			t.Fatalf("transport: %v", err)
		}
		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("parse location: %v", err)
		}
		if loc.Query().Get("Token") != "T1" || loc.Query().Get("x") != "1" {
			t.Fatalf("location = %s", loc)
		}
	})

	t.Run("no params redirects verbatim", func(t *testing.T) {
		tr := NewGatewayRedirect("https://bank.example/pay", nil)
		rec := httptest.NewRecorder()
		_ = tr.Transport(rec, httptest.NewRequest(http.MethodGet, "/pay", nil))
		if rec.Header().Get("Location") != "https://bank.example/pay" {
			t.Fatalf("location = %q", rec.Header().Get("Location"))
		}
	})
}

func TestGatewayPost(t *testing.T) {
	tr := NewGatewayPost("https://sep.shaparak.ir/Payment.aspx", map[string]string{
		"MID":    "MID1",
		"Amount": "50000",
	})
	rec := httptest.NewRecorder()

	if err := tr.Transport(rec, httptest.NewRequest(http.MethodGet, "/pay", nil)); err != nil {
		t.Fatalf("transport: %v", err)
	}
	body := rec.Body.String()
	for _, frag := range []string{
		`action="https://sep.shaparak.ir/Payment.aspx"`,
		`name="MID" value="MID1"`,
		`name="Amount" value="50000"`,
		`onload="document.forms[0].submit();"`,
	} {
		if !strings.Contains(body, frag) {
			t.Fatalf("form missing %s:\n%s", frag, body)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
}
