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
	iranKishName           = "irankish"
	iranKishPaymentPageURL = "https://ikc.shaparak.ir/TPayment/Payment/index"
	iranKishTokenURL       = "https://ikc.shaparak.ir/TToken/Tokens.svc"
	iranKishVerifyURL      = "https://ikc.shaparak.ir/TVerify/Verify.svc"
	iranKishTokenAction    = "http://tempuri.org/ITokens/MakeToken"
	iranKishVerifyAction   = "http://tempuri.org/IVerify/KicccPaymentsVerification"
	iranKishOKCode         = "100"
)

var _ adapter.Gateway = (*IranKish)(nil)

// IranKish talks to the IKC token and verification SOAP services. The client
// is handed off with an auto-submitting form carrying the session token.
type IranKish struct {
	cfg  config.IranKishConfig
	soap *soapClient
	tr   *i18n.Translator
	log  zerolog.Logger

	// overridable in tests
	tokenURL  string
	verifyURL string
}

func NewIranKish(cfg config.IranKishConfig, tr *i18n.Translator, logger *zerolog.Logger) *IranKish {
	return &IranKish{
		cfg:       cfg,
		soap:      newSOAPClient(cfg.Timeout),
		tr:        tr,
		log:       logger.With().Str("gateway", iranKishName).Logger(),
		tokenURL:  iranKishTokenURL,
		verifyURL: iranKishVerifyURL,
	}
}

func (g *IranKish) Name() string { return iranKishName }

func (g *IranKish) requestEnvelope(invoice *model.Invoice) string {
	return `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tem="http://tempuri.org/">` +
		`<soapenv:Header/>` +
		`<soapenv:Body>` +
		`<tem:MakeToken>` +
		fmt.Sprintf(`<tem:amount>%d</tem:amount>`, invoice.Amount.Int64()) +
		fmt.Sprintf(`<tem:merchantId>%s</tem:merchantId>`, xmlEscape(g.cfg.MerchantID)) +
		fmt.Sprintf(`<tem:invoiceNo>%d</tem:invoiceNo>`, invoice.TrackingNumber) +
		`<tem:paymentId></tem:paymentId>` +
		`<tem:specialPaymentId></tem:specialPaymentId>` +
		fmt.Sprintf(`<tem:revertURL>%s</tem:revertURL>`, xmlEscape(invoice.CallbackURL)) +
		`<tem:description></tem:description>` +
		`</tem:MakeToken>` +
		`</soapenv:Body>` +
		`</soapenv:Envelope>`
}

type iranKishTokenEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result struct {
				Result  string `xml:"result"`
				Message string `xml:"message"`
				Token   string `xml:"token"`
			} `xml:"MakeTokenResult"`
		} `xml:"MakeTokenResponse"`
	} `xml:"Body"`
}

func (g *IranKish) Request(ctx context.Context, invoice *model.Invoice) (*adapter.PaymentRequestResult, error) {
	body, err := g.soap.Call(ctx, g.tokenURL, iranKishTokenAction, g.requestEnvelope(invoice))
	if err != nil {
		g.log.Warn().Err(err).Int64("tracking_number", invoice.TrackingNumber).Msg("token call failed")
		return adapter.RequestFailed(g.tr.T("unexpected_gateway_error")), nil
	}

	var env iranKishTokenEnvelope
	if err := xml.Unmarshal([]byte(body), &env); err != nil {
		return adapter.RequestFailed(g.tr.T("invalid_data_received")), nil
	}
	res := env.Body.Response.Result

	if !strings.EqualFold(res.Result, "true") || res.Token == "" {
		message := res.Message
		if message == "" {
			message = g.tr.T("invalid_data_received")
		}
		return adapter.RequestFailed(message), nil
	}

	result := adapter.RequestSucceed(NewGatewayPost(iranKishPaymentPageURL, map[string]string{
		"merchantid": g.cfg.MerchantID,
		"token":      res.Token,
	}))
	result.AdditionalData["token"] = res.Token
	return result, nil
}

// IranKishCallbackResult is the parsed inbound callback. When Result is
// non-nil the outcome is already final and Verify must be skipped.
type IranKishCallbackResult struct {
	IsOK          bool
	Token         string
	InvoiceNumber int64
	ReferenceID   string
	Result        *adapter.PaymentVerifyResult
}

func (c *IranKishCallbackResult) Succeeded() bool                            { return c.IsOK }
func (c *IranKishCallbackResult) VerifyResult() *adapter.PaymentVerifyResult { return c.Result }

func (g *IranKish) Callback(r *http.Request, payment *model.Payment) (adapter.CallbackResult, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: parse callback form: %v", domain.ErrInvalidArgument, err)
	}

	resultCode := r.URL.Query().Get("ResultCode")
	merchantID := r.URL.Query().Get("MerchantId")
	referenceID := r.URL.Query().Get("ReferenceId")
	token := r.PostFormValue("Token")
	invoiceNumber, _ := strconv.ParseInt(r.URL.Query().Get("InvoiceNumber"), 10, 64)

	cb := &IranKishCallbackResult{
		Token:         token,
		InvoiceNumber: invoiceNumber,
		ReferenceID:   referenceID,
	}

	if !strings.EqualFold(merchantID, g.cfg.MerchantID) ||
		invoiceNumber != payment.TrackingNumber ||
		token == "" {
		cb.Result = adapter.VerifyFailed(invoiceNumber, referenceID, g.tr.T("invalid_data_received"))
		return cb, nil
	}

	// IranKish can settle failure from the callback alone; no verify call is
	// made for declined codes.
	if resultCode != iranKishOKCode {
		cb.Result = adapter.VerifyFailed(invoiceNumber, referenceID, translateCode(g.tr, iranKishName, resultCode))
		return cb, nil
	}

	cb.IsOK = true
	return cb, nil
}

func (g *IranKish) verifyEnvelope(cb *IranKishCallbackResult) string {
	return `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tem="http://tempuri.org/">` +
		`<soapenv:Header/>` +
		`<soapenv:Body>` +
		`<tem:KicccPaymentsVerification>` +
		fmt.Sprintf(`<tem:token>%s</tem:token>`, xmlEscape(cb.Token)) +
		fmt.Sprintf(`<tem:merchantId>%s</tem:merchantId>`, xmlEscape(g.cfg.MerchantID)) +
		fmt.Sprintf(`<tem:referenceNumber>%s</tem:referenceNumber>`, xmlEscape(cb.ReferenceID)) +
		`<tem:sha1Key></tem:sha1Key>` +
		`</tem:KicccPaymentsVerification>` +
		`</soapenv:Body>` +
		`</soapenv:Envelope>`
}

type iranKishVerifyEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result string `xml:"KicccPaymentsVerificationResult"`
		} `xml:"KicccPaymentsVerificationResponse"`
	} `xml:"Body"`
}

func (g *IranKish) Verify(ctx context.Context, callback adapter.CallbackResult, payment *model.Payment) (*adapter.PaymentVerifyResult, error) {
	cb, ok := callback.(*IranKishCallbackResult)
	if !ok {
		return nil, fmt.Errorf("%w: callback result is not from irankish", domain.ErrInvalidArgument)
	}

	body, err := g.soap.Call(ctx, g.verifyURL, iranKishVerifyAction, g.verifyEnvelope(cb))
	if err != nil {
		g.log.Warn().Err(err).Int64("tracking_number", payment.TrackingNumber).Msg("verify call failed")
		return adapter.VerifyFailed(cb.InvoiceNumber, cb.ReferenceID, g.tr.T("unexpected_gateway_error")), nil
	}

	var env iranKishVerifyEnvelope
	if err := xml.Unmarshal([]byte(body), &env); err != nil {
		return adapter.VerifyFailed(cb.InvoiceNumber, cb.ReferenceID, g.tr.T("invalid_data_received")), nil
	}
	raw := strings.TrimSpace(env.Body.Response.Result)

	// The verification result is the confirmed amount. Non-numeric content is
	// a protocol violation, not a decline.
	confirmed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return adapter.VerifyFailed(cb.InvoiceNumber, cb.ReferenceID, g.tr.T("invalid_data_received")), nil
	}

	// The confirmed amount must equal the stored payment amount, truncated the
	// same way the request envelope was built. A mismatch fails verification;
	// negative values are error codes and translate like callback codes.
	if confirmed != payment.Amount.Int64() {
		return adapter.VerifyFailed(cb.InvoiceNumber, cb.ReferenceID, translateCode(g.tr, iranKishName, raw)), nil
	}

	return &adapter.PaymentVerifyResult{
		IsSucceed:       true,
		Message:         g.tr.T("payment_succeed"),
		TrackingNumber:  cb.InvoiceNumber,
		TransactionCode: cb.ReferenceID,
		AdditionalData:  map[string]string{"token": cb.Token},
	}, nil
}

// Refund is not part of the IKC protocol; reversals go through the acquirer.
func (g *IranKish) Refund(ctx context.Context, payment *model.Payment, amount model.Money) (*adapter.PaymentRefundResult, error) {
	return nil, fmt.Errorf("%w: %s", domain.ErrRefundNotSupported, iranKishName)
}
