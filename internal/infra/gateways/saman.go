package gateways

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"shaparak-pay/internal/config"
	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/domain/ports/adapter"
	"shaparak-pay/internal/infra/i18n"
)

const (
	samanName           = "saman"
	samanPaymentPageURL = "https://sep.shaparak.ir/Payment.aspx"
	samanWebServiceURL  = "https://sep.shaparak.ir/payments/referencepayment.asmx"
	samanOKState        = "OK"
)

var _ adapter.Gateway = (*Saman)(nil)

// Saman posts the client straight to the SEP payment page; there is no
// server-side token call in the request phase. Verification and reversal go
// through the ReferencePayment web service.
type Saman struct {
	cfg  config.SamanConfig
	soap *soapClient
	tr   *i18n.Translator
	log  zerolog.Logger

	serviceURL string
}

func NewSaman(cfg config.SamanConfig, tr *i18n.Translator, logger *zerolog.Logger) *Saman {
	return &Saman{
		cfg:        cfg,
		soap:       newSOAPClient(cfg.Timeout),
		tr:         tr,
		log:        logger.With().Str("gateway", samanName).Logger(),
		serviceURL: samanWebServiceURL,
	}
}

func (g *Saman) Name() string { return samanName }

// Request performs no outbound call: the invoice fields go straight into the
// hand-off form.
func (g *Saman) Request(ctx context.Context, invoice *model.Invoice) (*adapter.PaymentRequestResult, error) {
	result := adapter.RequestSucceed(NewGatewayPost(samanPaymentPageURL, map[string]string{
		"Amount":      strconv.FormatInt(invoice.Amount.Int64(), 10),
		"MID":         g.cfg.MerchantID,
		"ResNum":      strconv.FormatInt(invoice.TrackingNumber, 10),
		"RedirectURL": invoice.CallbackURL,
	}))
	return result, nil
}

// SamanCallbackResult is the parsed inbound callback.
type SamanCallbackResult struct {
	IsOK   bool
	State  string
	RefNum string
	ResNum int64
	Result *adapter.PaymentVerifyResult
}

func (c *SamanCallbackResult) Succeeded() bool                            { return c.IsOK }
func (c *SamanCallbackResult) VerifyResult() *adapter.PaymentVerifyResult { return c.Result }

func (g *Saman) Callback(r *http.Request, payment *model.Payment) (adapter.CallbackResult, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: parse callback form: %v", domain.ErrInvalidArgument, err)
	}

	state := r.PostFormValue("State")
	refNum := r.PostFormValue("RefNum")
	resNum, _ := strconv.ParseInt(r.PostFormValue("ResNum"), 10, 64)

	cb := &SamanCallbackResult{State: state, RefNum: refNum, ResNum: resNum}

	if resNum != payment.TrackingNumber {
		cb.Result = adapter.VerifyFailed(resNum, refNum, g.tr.T("invalid_data_received"))
		return cb, nil
	}

	if !strings.EqualFold(state, samanOKState) {
		key := samanName + ".state_" + strings.ToLower(strings.ReplaceAll(state, " ", ""))
		message := g.tr.T("payment_failed")
		if g.tr.Has(key) {
			message = g.tr.T(key)
		}
		cb.Result = adapter.VerifyFailed(resNum, refNum, message)
		return cb, nil
	}

	if refNum == "" {
		cb.Result = adapter.VerifyFailed(resNum, refNum, g.tr.T("invalid_data_received"))
		return cb, nil
	}

	cb.IsOK = true
	return cb, nil
}

func (g *Saman) verifyEnvelope(refNum string) string {
	return `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tem="http://tempuri.org/">` +
		`<soapenv:Header/>` +
		`<soapenv:Body>` +
		`<tem:verifyTransaction>` +
		fmt.Sprintf(`<tem:String_1>%s</tem:String_1>`, xmlEscape(refNum)) +
		fmt.Sprintf(`<tem:String_2>%s</tem:String_2>`, xmlEscape(g.cfg.MerchantID)) +
		`</tem:verifyTransaction>` +
		`</soapenv:Body>` +
		`</soapenv:Envelope>`
}

type samanVerifyEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result string `xml:"result"`
		} `xml:"verifyTransactionResponse"`
	} `xml:"Body"`
}

func (g *Saman) Verify(ctx context.Context, callback adapter.CallbackResult, payment *model.Payment) (*adapter.PaymentVerifyResult, error) {
	cb, ok := callback.(*SamanCallbackResult)
	if !ok {
		return nil, fmt.Errorf("%w: callback result is not from saman", domain.ErrInvalidArgument)
	}

	body, err := g.soap.Call(ctx, g.serviceURL, "", g.verifyEnvelope(cb.RefNum))
	if err != nil {
		g.log.Warn().Err(err).Int64("tracking_number", payment.TrackingNumber).Msg("verify call failed")
		return adapter.VerifyFailed(cb.ResNum, cb.RefNum, g.tr.T("unexpected_gateway_error")), nil
	}

	var env samanVerifyEnvelope
	if err := xml.Unmarshal([]byte(body), &env); err != nil {
		return adapter.VerifyFailed(cb.ResNum, cb.RefNum, g.tr.T("invalid_data_received")), nil
	}
	raw := strings.TrimSpace(env.Body.Response.Result)

	// The service answers with the settled amount; negative values are error
	// codes. Fractional digits are truncated like the request-phase amount.
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return adapter.VerifyFailed(cb.ResNum, cb.RefNum, g.tr.T("invalid_data_received")), nil
	}
	confirmed := int64(value)

	if confirmed < 0 {
		code := strconv.FormatInt(confirmed, 10)
		return adapter.VerifyFailed(cb.ResNum, cb.RefNum, translateCode(g.tr, samanName, code)), nil
	}

	if confirmed != payment.Amount.Int64() {
		return adapter.VerifyFailed(cb.ResNum, cb.RefNum, g.tr.T("invalid_data_received")), nil
	}

	return &adapter.PaymentVerifyResult{
		IsSucceed:       true,
		Message:         g.tr.T("payment_succeed"),
		TrackingNumber:  cb.ResNum,
		TransactionCode: cb.RefNum,
		AdditionalData:  map[string]string{"refNum": cb.RefNum},
	}, nil
}

func (g *Saman) refundEnvelope(refNum string, amount int64) string {
	return `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tem="http://tempuri.org/">` +
		`<soapenv:Header/>` +
		`<soapenv:Body>` +
		`<tem:reverseTransaction>` +
		fmt.Sprintf(`<tem:String_1>%s</tem:String_1>`, xmlEscape(refNum)) +
		fmt.Sprintf(`<tem:String_2>%s</tem:String_2>`, xmlEscape(g.cfg.MerchantID)) +
		fmt.Sprintf(`<tem:String_3>%s</tem:String_3>`, xmlEscape(g.cfg.Password)) +
		fmt.Sprintf(`<tem:Int_4>%d</tem:Int_4>`, amount) +
		`</tem:reverseTransaction>` +
		`</soapenv:Body>` +
		`</soapenv:Envelope>`
}

type samanReverseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result string `xml:"result"`
		} `xml:"reverseTransactionResponse"`
	} `xml:"Body"`
}

// Refund reverses a verified payment using the reference number stashed by
// the verify phase.
func (g *Saman) Refund(ctx context.Context, payment *model.Payment, amount model.Money) (*adapter.PaymentRefundResult, error) {
	tx, ok := payment.TransactionOf(model.TransactionTypeVerify)
	if !ok {
		return nil, fmt.Errorf("%w: tracking number %d", domain.ErrTransactionNotFound, payment.TrackingNumber)
	}
	refNum, ok := tx.AdditionalData["refNum"]
	if !ok || refNum == "" {
		return nil, fmt.Errorf("%w: tracking number %d", domain.ErrTokenNotFound, payment.TrackingNumber)
	}

	body, err := g.soap.Call(ctx, g.serviceURL, "", g.refundEnvelope(refNum, amount.Int64()))
	if err != nil {
		g.log.Warn().Err(err).Int64("tracking_number", payment.TrackingNumber).Msg("reverse call failed")
		return &adapter.PaymentRefundResult{IsSucceed: false, Message: g.tr.T("unexpected_gateway_error")}, nil
	}

	var env samanReverseEnvelope
	if err := xml.Unmarshal([]byte(body), &env); err != nil {
		return &adapter.PaymentRefundResult{IsSucceed: false, Message: g.tr.T("invalid_data_received")}, nil
	}
	raw := strings.TrimSpace(env.Body.Response.Result)

	if raw == "1" {
		return &adapter.PaymentRefundResult{
			IsSucceed:      true,
			Message:        g.tr.T("payment_succeed"),
			AdditionalData: map[string]string{"refNum": refNum},
		}, nil
	}

	return &adapter.PaymentRefundResult{
		IsSucceed:      false,
		Message:        translateCode(g.tr, samanName, raw),
		AdditionalData: map[string]string{"refNum": refNum},
	}, nil
}
