package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/domain/ports/adapter"
	"shaparak-pay/internal/domain/ports/repository"
	"shaparak-pay/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase drives the unified payment lifecycle across all gateways.
type PaymentUseCase interface {
	// Pay builds an invoice, runs the gateway's Request phase and persists the
	// payment with its request transaction. The returned result carries the
	// transporter the HTTP layer renders to hand the browser to the bank.
	Pay(ctx context.Context, gatewayName string, amount model.Money, callbackURL string, data map[string]string) (*adapter.PaymentRequestResult, *model.Payment, error)

	// HandleCallback processes the bank's inbound callback for the payment
	// identified by trackingNumber, runs Verify when the callback did not
	// already settle failure, and records the verify transaction.
	HandleCallback(ctx context.Context, r *http.Request, trackingNumber int64) (*adapter.PaymentVerifyResult, error)

	// Refund reverses a verified payment. A zero amount refunds the full
	// payment amount.
	Refund(ctx context.Context, trackingNumber int64, amount model.Money) (*adapter.PaymentRefundResult, error)

	// GetByTrackingNumber loads a payment with its full transaction history.
	GetByTrackingNumber(ctx context.Context, trackingNumber int64) (*model.Payment, error)
}

type paymentUC struct {
	provider adapter.Provider
	payments repository.PaymentRepository
	tracking repository.TrackingNumberProvider
	log      zerolog.Logger
}

func NewPaymentUseCase(provider adapter.Provider, payments repository.PaymentRepository, tracking repository.TrackingNumberProvider, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{
		provider: provider,
		payments: payments,
		tracking: tracking,
		log:      logger.With().Str("component", "payment_uc").Logger(),
	}
}

func (u *paymentUC) Pay(ctx context.Context, gatewayName string, amount model.Money, callbackURL string, data map[string]string) (*adapter.PaymentRequestResult, *model.Payment, error) {
	builder := NewInvoiceBuilder(u.provider, u.tracking).
		SetGateway(gatewayName).
		SetAmount(amount).
		SetCallbackURL(callbackURL)
	for k, v := range data {
		builder.AddData(k, v)
	}
	invoice, err := builder.Build(ctx)
	if err != nil {
		return nil, nil, err
	}

	gateway, err := u.provider.Provide(gatewayName)
	if err != nil {
		return nil, nil, err
	}

	result, err := gateway.Request(ctx, invoice)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	status := model.PaymentStatusInitiated
	if !result.IsSucceed {
		status = model.PaymentStatusFailed
	}
	payment := &model.Payment{
		ID:             uuid.NewString(),
		TrackingNumber: invoice.TrackingNumber,
		GatewayName:    gatewayName,
		Amount:         amount,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.payments.Save(ctx, payment); err != nil {
		return nil, nil, err
	}

	tx := newTransaction(invoice.TrackingNumber, model.TransactionTypeRequest, result.IsSucceed, result.Message, result.AdditionalData)
	if err := u.payments.AddTransaction(ctx, payment.ID, tx); err != nil {
		return nil, nil, err
	}
	payment.Transactions = append(payment.Transactions, *tx)

	metrics.IncPhase(gatewayName, "request", result.IsSucceed)
	u.log.Info().
		Str("gateway", gatewayName).
		Int64("tracking_number", invoice.TrackingNumber).
		Bool("succeed", result.IsSucceed).
		Msg("payment requested")

	return result, payment, nil
}

func (u *paymentUC) HandleCallback(ctx context.Context, r *http.Request, trackingNumber int64) (*adapter.PaymentVerifyResult, error) {
	payment, err := u.payments.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if payment.Status == model.PaymentStatusSucceeded || payment.Status == model.PaymentStatusRefunded {
		return nil, fmt.Errorf("%w: tracking number %d", domain.ErrPaymentAlreadyHandled, trackingNumber)
	}

	gateway, err := u.provider.Provide(payment.GatewayName)
	if err != nil {
		return nil, err
	}

	callback, err := gateway.Callback(r, payment)
	if err != nil {
		return nil, err
	}

	// An embedded result means the callback already settled the outcome and
	// the verify call must be skipped.
	result := callback.VerifyResult()
	if result == nil {
		result, err = gateway.Verify(ctx, callback, payment)
		if err != nil {
			return nil, err
		}
	} else {
		metrics.IncCallbackRejected(payment.GatewayName)
	}

	tx := newTransaction(trackingNumber, model.TransactionTypeVerify, result.IsSucceed, result.Message, result.AdditionalData)
	if err := u.payments.AddTransaction(ctx, payment.ID, tx); err != nil {
		return nil, err
	}
	payment.Transactions = append(payment.Transactions, *tx)

	status := model.PaymentStatusFailed
	if result.IsSucceed {
		status = model.PaymentStatusSucceeded
	}
	if err := u.payments.UpdateStatus(ctx, payment.ID, status); err != nil {
		return nil, err
	}
	payment.Status = status

	metrics.IncPhase(payment.GatewayName, "verify", result.IsSucceed)
	u.log.Info().
		Str("gateway", payment.GatewayName).
		Int64("tracking_number", trackingNumber).
		Bool("succeed", result.IsSucceed).
		Str("transaction_code", result.TransactionCode).
		Msg("callback handled")

	return result, nil
}

func (u *paymentUC) Refund(ctx context.Context, trackingNumber int64, amount model.Money) (*adapter.PaymentRefundResult, error) {
	payment, err := u.payments.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if !payment.IsVerified() {
		return nil, fmt.Errorf("%w: tracking number %d", domain.ErrPaymentNotVerified, trackingNumber)
	}
	if amount.IsZero() {
		amount = payment.Amount
	}

	gateway, err := u.provider.Provide(payment.GatewayName)
	if err != nil {
		return nil, err
	}

	result, err := gateway.Refund(ctx, payment, amount)
	if err != nil {
		return nil, err
	}

	tx := newTransaction(trackingNumber, model.TransactionTypeRefund, result.IsSucceed, result.Message, result.AdditionalData)
	if err := u.payments.AddTransaction(ctx, payment.ID, tx); err != nil {
		return nil, err
	}
	if result.IsSucceed {
		if err := u.payments.UpdateStatus(ctx, payment.ID, model.PaymentStatusRefunded); err != nil {
			return nil, err
		}
	}

	metrics.IncPhase(payment.GatewayName, "refund", result.IsSucceed)
	u.log.Info().
		Str("gateway", payment.GatewayName).
		Int64("tracking_number", trackingNumber).
		Bool("succeed", result.IsSucceed).
		Msg("refund attempted")

	return result, nil
}

func (u *paymentUC) GetByTrackingNumber(ctx context.Context, trackingNumber int64) (*model.Payment, error) {
	return u.payments.FindByTrackingNumber(ctx, trackingNumber)
}

func newTransaction(trackingNumber int64, typ model.TransactionType, succeed bool, message string, data map[string]string) *model.Transaction {
	return &model.Transaction{
		ID:             ulid.Make().String(),
		TrackingNumber: trackingNumber,
		Type:           typ,
		IsSucceed:      succeed,
		Message:        message,
		AdditionalData: data,
		CreatedAt:      time.Now(),
	}
}
