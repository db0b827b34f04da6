package adapter

import (
	"context"
	"net/http"

	"shaparak-pay/internal/domain/model"
)

// Transporter hands the client browser to the bank's payment page, either by
// an HTTP redirect or by an auto-submitting form. Implementations are one-shot
// renderers with no state.
type Transporter interface {
	Transport(w http.ResponseWriter, r *http.Request) error
}

// CallbackResult is a per-gateway view of the inbound callback request. When
// the callback alone already determines failure, VerifyResult returns the
// embedded failed result and the Verify phase must not be invoked.
type CallbackResult interface {
	Succeeded() bool
	VerifyResult() *PaymentVerifyResult
}

// PaymentRequestResult is the unified outcome of the Request phase. On success
// Transporter is non-nil and targets the bank's documented payment page; on
// failure it is a NullTransporter and Message explains why.
type PaymentRequestResult struct {
	IsSucceed      bool
	Message        string
	Transporter    Transporter
	AdditionalData map[string]string
}

// PaymentVerifyResult is the unified outcome of the Callback/Verify phases.
// TransactionCode is the bank-issued reference for a settled payment.
type PaymentVerifyResult struct {
	IsSucceed       bool
	Message         string
	TrackingNumber  int64
	TransactionCode string
	AdditionalData  map[string]string
}

// PaymentRefundResult is the unified outcome of the Refund phase.
type PaymentRefundResult struct {
	IsSucceed      bool
	Message        string
	AdditionalData map[string]string
}

// Gateway is the per-bank adapter contract. Implementations are stateless
// aside from injected configuration and safe for concurrent use.
//
// Gateway-reported failures (declines, malformed bank fields, identity or
// amount mismatches) come back as failed results with a nil error. A non-nil
// error means a local configuration/invariant defect, e.g. refunding a payment
// with no stored verify token.
type Gateway interface {
	Name() string

	// Request serializes the invoice into the bank's wire format, performs at
	// most one outbound call and returns a transporter on acceptance.
	Request(ctx context.Context, invoice *model.Invoice) (*PaymentRequestResult, error)

	// Callback extracts and validates the bank's fields from the inbound
	// request against the stored payment. Validation failures short-circuit to
	// an embedded failed verify result.
	Callback(r *http.Request, payment *model.Payment) (CallbackResult, error)

	// Verify confirms the payment with the bank. Only called when the callback
	// did not already resolve to failure.
	Verify(ctx context.Context, callback CallbackResult, payment *model.Payment) (*PaymentVerifyResult, error)

	// Refund reverses a previously verified payment.
	Refund(ctx context.Context, payment *model.Payment, amount model.Money) (*PaymentRefundResult, error)
}

// Provider resolves a gateway name to a ready adapter. Unknown names fail with
// domain.ErrGatewayNotRegistered.
type Provider interface {
	Provide(name string) (Gateway, error)
}

// RequestSucceed builds a successful request result around a transporter.
func RequestSucceed(t Transporter) *PaymentRequestResult {
	return &PaymentRequestResult{IsSucceed: true, Transporter: t, AdditionalData: map[string]string{}}
}

// RequestFailed builds a failed request result with a placeholder transporter.
func RequestFailed(message string) *PaymentRequestResult {
	return &PaymentRequestResult{IsSucceed: false, Message: message, Transporter: NullTransporter{}}
}

// VerifyFailed builds a failed verify result.
func VerifyFailed(trackingNumber int64, transactionCode, message string) *PaymentVerifyResult {
	return &PaymentVerifyResult{
		IsSucceed:       false,
		Message:         message,
		TrackingNumber:  trackingNumber,
		TransactionCode: transactionCode,
	}
}

// NullTransporter renders nothing. It is the payload of failed request results.
type NullTransporter struct{}

func (NullTransporter) Transport(http.ResponseWriter, *http.Request) error { return nil }
