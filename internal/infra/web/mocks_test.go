//go:build !integration

package web_test

import (
	"context"
	"net/http"

	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/domain/ports/adapter"
	"shaparak-pay/internal/usecase"
)

var _ usecase.PaymentUseCase = (*mockPaymentUC)(nil)

type mockPaymentUC struct {
	payFn      func(ctx context.Context, gateway string, amount model.Money, callbackURL string, data map[string]string) (*adapter.PaymentRequestResult, *model.Payment, error)
	callbackFn func(ctx context.Context, r *http.Request, trackingNumber int64) (*adapter.PaymentVerifyResult, error)
	refundFn   func(ctx context.Context, trackingNumber int64, amount model.Money) (*adapter.PaymentRefundResult, error)
	getFn      func(ctx context.Context, trackingNumber int64) (*model.Payment, error)
}

func (m *mockPaymentUC) Pay(ctx context.Context, gateway string, amount model.Money, callbackURL string, data map[string]string) (*adapter.PaymentRequestResult, *model.Payment, error) {
	return m.payFn(ctx, gateway, amount, callbackURL, data)
}

func (m *mockPaymentUC) HandleCallback(ctx context.Context, r *http.Request, trackingNumber int64) (*adapter.PaymentVerifyResult, error) {
	return m.callbackFn(ctx, r, trackingNumber)
}

func (m *mockPaymentUC) Refund(ctx context.Context, trackingNumber int64, amount model.Money) (*adapter.PaymentRefundResult, error) {
	return m.refundFn(ctx, trackingNumber, amount)
}

func (m *mockPaymentUC) GetByTrackingNumber(ctx context.Context, trackingNumber int64) (*model.Payment, error) {
	return m.getFn(ctx, trackingNumber)
}

// markerTransporter writes a recognizable body so handler tests can assert the
// transporter was rendered.
type markerTransporter struct{ marker string }

func (t *markerTransporter) Transport(w http.ResponseWriter, _ *http.Request) error {
	_, err := w.Write([]byte(t.marker))
	return err
}
