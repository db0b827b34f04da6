package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/domain/ports/adapter"
	"shaparak-pay/internal/domain/ports/repository"
)

// TrackingNumberParam is appended to the callback URL so the callback handler
// can locate the stored payment before gateway validation runs.
const TrackingNumberParam = "trackingNumber"

// InvoiceBuilder accumulates invoice fields and produces an immutable Invoice.
// Build allocates the tracking number exactly once per built invoice; all
// other validation is pure. Builders are single-goroutine objects.
type InvoiceBuilder struct {
	provider adapter.Provider
	tracking repository.TrackingNumberProvider

	amount      model.Money
	amountSet   bool
	callbackURL string
	gatewayName string
	data        map[string]string
}

func NewInvoiceBuilder(provider adapter.Provider, tracking repository.TrackingNumberProvider) *InvoiceBuilder {
	return &InvoiceBuilder{provider: provider, tracking: tracking}
}

func (b *InvoiceBuilder) SetAmount(amount model.Money) *InvoiceBuilder {
	b.amount = amount
	b.amountSet = true
	return b
}

func (b *InvoiceBuilder) SetCallbackURL(u string) *InvoiceBuilder {
	b.callbackURL = u
	return b
}

func (b *InvoiceBuilder) SetGateway(name string) *InvoiceBuilder {
	b.gatewayName = name
	return b
}

func (b *InvoiceBuilder) AddData(key, value string) *InvoiceBuilder {
	if b.data == nil {
		b.data = make(map[string]string)
	}
	b.data[key] = value
	return b
}

func (b *InvoiceBuilder) Build(ctx context.Context) (*model.Invoice, error) {
	if b.gatewayName == "" {
		return nil, domain.ErrGatewayTypeNotSet
	}
	if _, err := b.provider.Provide(b.gatewayName); err != nil {
		return nil, err
	}
	if !b.amountSet || !b.amount.IsPositive() {
		return nil, domain.ErrAmountNotSet
	}
	if b.callbackURL == "" {
		return nil, domain.ErrCallbackURLNotSet
	}

	trackingNumber, err := b.tracking.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate tracking number: %w", err)
	}

	callbackURL, err := appendTrackingNumber(b.callbackURL, trackingNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: callback url: %v", domain.ErrInvalidArgument, err)
	}

	data := make(map[string]string, len(b.data))
	for k, v := range b.data {
		data[k] = v
	}

	return &model.Invoice{
		Amount:         b.amount,
		TrackingNumber: trackingNumber,
		CallbackURL:    callbackURL,
		GatewayName:    b.gatewayName,
		AdditionalData: data,
	}, nil
}

func appendTrackingNumber(rawURL string, trackingNumber int64) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(TrackingNumberParam, strconv.FormatInt(trackingNumber, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
