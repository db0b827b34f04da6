package gateways

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"shaparak-pay/internal/config"
	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/domain/ports/adapter"
	"shaparak-pay/internal/infra/i18n"
)

const (
	parsianName           = "parsian"
	parsianPaymentPageURL = "https://pec.shaparak.ir/NewIPG/"
	parsianRequestURL     = "https://pec.shaparak.ir/NewIPGServices/Sale/SaleService.asmx"
	parsianVerifyURL      = "https://pec.shaparak.ir/NewIPGServices/Confirm/ConfirmService.asmx"
	parsianRefundURL      = "https://pec.shaparak.ir/NewIPGServices/Reverse/ReversalService.asmx"
	parsianOKStatus       = "0"
)

var _ adapter.Gateway = (*Parsian)(nil)

// Parsian talks to the PEC NewIPG SOAP services. The client is handed off
// with a redirect carrying the sale token.
type Parsian struct {
	cfg  config.ParsianConfig
	soap *soapClient
	tr   *i18n.Translator
	log  zerolog.Logger

	requestURL string
	verifyURL  string
	refundURL  string
}

func NewParsian(cfg config.ParsianConfig, tr *i18n.Translator, logger *zerolog.Logger) *Parsian {
	return &Parsian{
		cfg:        cfg,
		soap:       newSOAPClient(cfg.Timeout),
		tr:         tr,
		log:        logger.With().Str("gateway", parsianName).Logger(),
		requestURL: parsianRequestURL,
		verifyURL:  parsianVerifyURL,
		refundURL:  parsianRefundURL,
	}
}

func (g *Parsian) Name() string { return parsianName }

func (g *Parsian) requestEnvelope(invoice *model.Invoice) string {
	return `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:sal="https://pec.Shaparak.ir/NewIPGServices/Sale/SaleService">` +
		`<soapenv:Header/>` +
		`<soapenv:Body>` +
		`<sal:SalePaymentRequest>` +
		`<sal:requestData>` +
		fmt.Sprintf(`<sal:LoginAccount>%s</sal:LoginAccount>`, xmlEscape(g.cfg.LoginAccount)) +
		fmt.Sprintf(`<sal:Amount>%d</sal:Amount>`, invoice.Amount.Int64()) +
		fmt.Sprintf(`<sal:OrderId>%d</sal:OrderId>`, invoice.TrackingNumber) +
		fmt.Sprintf(`<sal:CallBackUrl>%s</sal:CallBackUrl>`, xmlEscape(invoice.CallbackURL)) +
		`<sal:AdditionalData></sal:AdditionalData>` +
		`<sal:Originator></sal:Originator>` +
		`</sal:requestData>` +
		`</sal:SalePaymentRequest>` +
		`</soapenv:Body>` +
		`</soapenv:Envelope>`
}

type parsianSaleEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result struct {
				Token   string `xml:"Token"`
				Status  string `xml:"Status"`
				Message string `xml:"Message"`
			} `xml:"SalePaymentRequestResult"`
		} `xml:"SalePaymentRequestResponse"`
	} `xml:"Body"`
}

func (g *Parsian) Request(ctx context.Context, invoice *model.Invoice) (*adapter.PaymentRequestResult, error) {
	body, err := g.soap.Call(ctx, g.requestURL, "", g.requestEnvelope(invoice))
	if err != nil {
		g.log.Warn().Err(err).Int64("tracking_number", invoice.TrackingNumber).Msg("sale call failed")
		return adapter.RequestFailed(g.tr.T("unexpected_gateway_error")), nil
	}

	var env parsianSaleEnvelope
	if err := xml.Unmarshal([]byte(body), &env); err != nil {
		return adapter.RequestFailed(g.tr.T("invalid_data_received")), nil
	}
	res := env.Body.Response.Result

	if res.Status != parsianOKStatus || res.Token == "" {
		message := res.Message
		if message == "" {
			message = g.tr.T("payment_failed")
		}
		return adapter.RequestFailed(message), nil
	}

	result := adapter.RequestSucceed(NewGatewayRedirect(parsianPaymentPageURL, url.Values{"Token": {res.Token}}))
	result.AdditionalData["token"] = res.Token
	return result, nil
}

// ParsianCallbackResult is the parsed inbound callback.
type ParsianCallbackResult struct {
	IsOK   bool
	Token  string
	RRN    string
	Result *adapter.PaymentVerifyResult
}

func (c *ParsianCallbackResult) Succeeded() bool                            { return c.IsOK }
func (c *ParsianCallbackResult) VerifyResult() *adapter.PaymentVerifyResult { return c.Result }

func (g *Parsian) Callback(r *http.Request, payment *model.Payment) (adapter.CallbackResult, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: parse callback form: %v", domain.ErrInvalidArgument, err)
	}

	token := r.PostFormValue("token")
	status := r.PostFormValue("status")
	orderID := r.PostFormValue("orderId")
	amount := r.PostFormValue("amount")
	rrn := r.PostFormValue("RRN")

	isOK := status == parsianOKStatus && token != ""

	var message string
	if isOK {
		numOrder, orderErr := strconv.ParseInt(orderID, 10, 64)
		numAmount, amountErr := strconv.ParseInt(amount, 10, 64)
		if rrn == "" || orderErr != nil || amountErr != nil ||
			numOrder != payment.TrackingNumber ||
			numAmount != payment.Amount.Int64() {
			isOK = false
			message = g.tr.T("invalid_data_received")
		}
	} else {
		message = fmt.Sprintf("Error %s", status)
	}

	cb := &ParsianCallbackResult{IsOK: isOK, Token: token, RRN: rrn}
	if !isOK {
		cb.Result = adapter.VerifyFailed(payment.TrackingNumber, rrn, message)
	}
	return cb, nil
}

func (g *Parsian) verifyEnvelope(token string) string {
	return `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:con="https://pec.Shaparak.ir/NewIPGServices/Confirm/ConfirmService">` +
		`<soapenv:Header/>` +
		`<soapenv:Body>` +
		`<con:ConfirmPayment>` +
		`<con:requestData>` +
		fmt.Sprintf(`<con:LoginAccount>%s</con:LoginAccount>`, xmlEscape(g.cfg.LoginAccount)) +
		fmt.Sprintf(`<con:Token>%s</con:Token>`, xmlEscape(token)) +
		`</con:requestData>` +
		`</con:ConfirmPayment>` +
		`</soapenv:Body>` +
		`</soapenv:Envelope>`
}

type parsianConfirmEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result struct {
				Status string `xml:"Status"`
				RRN    string `xml:"RRN"`
				Token  string `xml:"Token"`
			} `xml:"ConfirmPaymentResult"`
		} `xml:"ConfirmPaymentResponse"`
	} `xml:"Body"`
}

func (g *Parsian) Verify(ctx context.Context, callback adapter.CallbackResult, payment *model.Payment) (*adapter.PaymentVerifyResult, error) {
	cb, ok := callback.(*ParsianCallbackResult)
	if !ok {
		return nil, fmt.Errorf("%w: callback result is not from parsian", domain.ErrInvalidArgument)
	}

	body, err := g.soap.Call(ctx, g.verifyURL, "", g.verifyEnvelope(cb.Token))
	if err != nil {
		g.log.Warn().Err(err).Int64("tracking_number", payment.TrackingNumber).Msg("confirm call failed")
		return adapter.VerifyFailed(payment.TrackingNumber, cb.RRN, g.tr.T("unexpected_gateway_error")), nil
	}

	var env parsianConfirmEnvelope
	if err := xml.Unmarshal([]byte(body), &env); err != nil {
		return adapter.VerifyFailed(payment.TrackingNumber, cb.RRN, g.tr.T("invalid_data_received")), nil
	}
	res := env.Body.Response.Result

	isOK := res.Status == parsianOKStatus

	message := fmt.Sprintf("Error %s", res.Status)
	if isOK {
		message = g.tr.T("payment_succeed")
	}

	return &adapter.PaymentVerifyResult{
		IsSucceed:       isOK,
		Message:         message,
		TrackingNumber:  payment.TrackingNumber,
		TransactionCode: res.RRN,
		AdditionalData:  map[string]string{"token": res.Token},
	}, nil
}

func (g *Parsian) refundEnvelope(token string) string {
	return `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope" xmlns:rev="https://pec.Shaparak.ir/NewIPGServices/Reversal/ReversalService">` +
		`<soap:Header/>` +
		`<soap:Body>` +
		`<rev:ReversalRequest>` +
		`<rev:requestData>` +
		fmt.Sprintf(`<rev:LoginAccount>%s</rev:LoginAccount>`, xmlEscape(g.cfg.LoginAccount)) +
		fmt.Sprintf(`<rev:Token>%s</rev:Token>`, xmlEscape(token)) +
		`</rev:requestData>` +
		`</rev:ReversalRequest>` +
		`</soap:Body>` +
		`</soap:Envelope>`
}

type parsianReversalEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result struct {
				Status  string `xml:"Status"`
				Message string `xml:"Message"`
				Token   string `xml:"Token"`
			} `xml:"ReversalRequestResult"`
		} `xml:"ReversalRequestResponse"`
	} `xml:"Body"`
}

// Refund reverses a verified payment using the token stashed by the verify
// phase. A missing transaction or token is a local defect, not a bank outcome.
func (g *Parsian) Refund(ctx context.Context, payment *model.Payment, amount model.Money) (*adapter.PaymentRefundResult, error) {
	tx, ok := payment.TransactionOf(model.TransactionTypeVerify)
	if !ok {
		return nil, fmt.Errorf("%w: tracking number %d", domain.ErrTransactionNotFound, payment.TrackingNumber)
	}
	token, ok := tx.AdditionalData["token"]
	if !ok || token == "" {
		return nil, fmt.Errorf("%w: tracking number %d", domain.ErrTokenNotFound, payment.TrackingNumber)
	}

	body, err := g.soap.Call(ctx, g.refundURL, "", g.refundEnvelope(token))
	if err != nil {
		g.log.Warn().Err(err).Int64("tracking_number", payment.TrackingNumber).Msg("reversal call failed")
		return &adapter.PaymentRefundResult{IsSucceed: false, Message: g.tr.T("unexpected_gateway_error")}, nil
	}

	var env parsianReversalEnvelope
	if err := xml.Unmarshal([]byte(body), &env); err != nil {
		return &adapter.PaymentRefundResult{IsSucceed: false, Message: g.tr.T("invalid_data_received")}, nil
	}
	res := env.Body.Response.Result

	message := res.Message
	if message == "" {
		message = fmt.Sprintf("Error %s", res.Status)
	}

	return &adapter.PaymentRefundResult{
		IsSucceed:      res.Status == parsianOKStatus,
		Message:        message,
		AdditionalData: map[string]string{"token": res.Token},
	}, nil
}
