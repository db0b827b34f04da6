package gateways

import (
	"html/template"
	"net/http"
	"net/url"

	"shaparak-pay/internal/domain/ports/adapter"
)

var _ adapter.Transporter = (*GatewayRedirect)(nil)
var _ adapter.Transporter = (*GatewayPost)(nil)

// GatewayRedirect hands the browser off with an HTTP redirect to the bank's
// payment page, query parameters attached.
type GatewayRedirect struct {
	URL    string
	Params url.Values
}

func NewGatewayRedirect(rawURL string, params url.Values) *GatewayRedirect {
	return &GatewayRedirect{URL: rawURL, Params: params}
}

func (g *GatewayRedirect) Transport(w http.ResponseWriter, r *http.Request) error {
	target := g.URL
	if len(g.Params) > 0 {
		u, err := url.Parse(g.URL)
		if err != nil {
			return err
		}
		q := u.Query()
		for k, vs := range g.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusFound)
	return nil
}

var postFormTmpl = template.Must(template.New("gatewayPost").Parse(`<!DOCTYPE html>
<html>
<body onload="document.forms[0].submit();">
<form action="{{.URL}}" method="post">
{{- range $name, $value := .Fields}}
<input type="hidden" name="{{$name}}" value="{{$value}}" />
{{- end}}
<noscript><input type="submit" value="Continue to payment" /></noscript>
</form>
</body>
</html>`))

// GatewayPost hands the browser off with a minimal auto-submitting HTML form
// POST to the bank's payment page, fields hidden.
type GatewayPost struct {
	URL    string
	Fields map[string]string
}

func NewGatewayPost(rawURL string, fields map[string]string) *GatewayPost {
	return &GatewayPost{URL: rawURL, Fields: fields}
}

func (g *GatewayPost) Transport(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return postFormTmpl.Execute(w, struct {
		URL    string
		Fields map[string]string
	}{URL: g.URL, Fields: g.Fields})
}
