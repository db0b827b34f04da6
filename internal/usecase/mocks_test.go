//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/domain/ports/adapter"
)

//
// ---------------- in-memory infra mocks ----------------
//

type memPaymentRepo struct {
	mu         sync.Mutex
	byTracking map[int64]*model.Payment
	byID       map[string]*model.Payment

	errSave  error
	errFind  error
	errAddTx error
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{
		byTracking: map[int64]*model.Payment{},
		byID:       map[string]*model.Payment{},
	}
}

func (m *memPaymentRepo) Save(ctx context.Context, p *model.Payment) error {
	if m.errSave != nil {
		return m.errSave
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byTracking[p.TrackingNumber]; ok {
		return domain.ErrDuplicateTracking
	}
	cp := *p
	m.byTracking[p.TrackingNumber] = &cp
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPaymentRepo) FindByTrackingNumber(ctx context.Context, trackingNumber int64) (*model.Payment, error) {
	if m.errFind != nil {
		return nil, m.errFind
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byTracking[trackingNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	cp.Transactions = append([]model.Transaction(nil), p.Transactions...)
	return &cp, nil
}

func (m *memPaymentRepo) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memPaymentRepo) AddTransaction(ctx context.Context, paymentID string, tx *model.Transaction) error {
	if m.errAddTx != nil {
		return m.errAddTx
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[paymentID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Transactions = append(p.Transactions, *tx)
	return nil
}

func (m *memPaymentRepo) ExpireInitiatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.byID {
		if p.Status == model.PaymentStatusInitiated && p.UpdatedAt.Before(cutoff) {
			p.Status = model.PaymentStatusFailed
			n++
		}
	}
	return n, nil
}

// seqTracking hands out 1, 2, 3, ... and counts allocations.
type seqTracking struct {
	n     int64
	calls int
	err   error
}

func (s *seqTracking) Next(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.calls++
	s.n++
	return s.n, nil
}

//
// ---------------- gateway mocks ----------------
//

type mockCallbackResult struct {
	ok     bool
	result *adapter.PaymentVerifyResult
}

func (c *mockCallbackResult) Succeeded() bool                            { return c.ok }
func (c *mockCallbackResult) VerifyResult() *adapter.PaymentVerifyResult { return c.result }

type mockGateway struct {
	name string

	requestFn  func(ctx context.Context, invoice *model.Invoice) (*adapter.PaymentRequestResult, error)
	callbackFn func(r *http.Request, payment *model.Payment) (adapter.CallbackResult, error)
	verifyFn   func(ctx context.Context, cb adapter.CallbackResult, payment *model.Payment) (*adapter.PaymentVerifyResult, error)
	refundFn   func(ctx context.Context, payment *model.Payment, amount model.Money) (*adapter.PaymentRefundResult, error)

	verifyCalls int
}

func (g *mockGateway) Name() string { return g.name }

func (g *mockGateway) Request(ctx context.Context, invoice *model.Invoice) (*adapter.PaymentRequestResult, error) {
	if g.requestFn != nil {
		return g.requestFn(ctx, invoice)
	}
	return adapter.RequestSucceed(adapter.NullTransporter{}), nil
}

func (g *mockGateway) Callback(r *http.Request, payment *model.Payment) (adapter.CallbackResult, error) {
	if g.callbackFn != nil {
		return g.callbackFn(r, payment)
	}
	return &mockCallbackResult{ok: true}, nil
}

func (g *mockGateway) Verify(ctx context.Context, cb adapter.CallbackResult, payment *model.Payment) (*adapter.PaymentVerifyResult, error) {
	g.verifyCalls++
	if g.verifyFn != nil {
		return g.verifyFn(ctx, cb, payment)
	}
	return &adapter.PaymentVerifyResult{
		IsSucceed:       true,
		TrackingNumber:  payment.TrackingNumber,
		TransactionCode: "ref-1",
	}, nil
}

func (g *mockGateway) Refund(ctx context.Context, payment *model.Payment, amount model.Money) (*adapter.PaymentRefundResult, error) {
	if g.refundFn != nil {
		return g.refundFn(ctx, payment, amount)
	}
	return &adapter.PaymentRefundResult{IsSucceed: true}, nil
}

type mockProvider struct {
	gateways map[string]adapter.Gateway
}

func newMockProvider(gws ...adapter.Gateway) *mockProvider {
	m := &mockProvider{gateways: map[string]adapter.Gateway{}}
	for _, g := range gws {
		m.gateways[g.Name()] = g
	}
	return m
}

func (m *mockProvider) Provide(name string) (adapter.Gateway, error) {
	g, ok := m.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrGatewayNotRegistered, name)
	}
	return g, nil
}
