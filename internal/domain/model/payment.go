package model

import "time"

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated" // request accepted by the gateway, client handed off
	PaymentStatusSucceeded PaymentStatus = "succeeded" // verified OK at the gateway
	PaymentStatusFailed    PaymentStatus = "failed"    // callback/verify failed
	PaymentStatusRefunded  PaymentStatus = "refunded"  // reversal accepted by the gateway
)

// TransactionType tags one lifecycle phase attempt against a gateway.
type TransactionType string

const (
	TransactionTypeRequest TransactionType = "request"
	TransactionTypeVerify  TransactionType = "verify"
	TransactionTypeRefund  TransactionType = "refund"
)

// Transaction is one phase attempt for a payment. AdditionalData carries
// whatever the gateway issued for that phase (typically a token) so later
// phases of the same payment can recover it.
type Transaction struct {
	ID             string // ULID
	TrackingNumber int64
	Type           TransactionType
	IsSucceed      bool
	Message        string
	AdditionalData map[string]string
	CreatedAt      time.Time
}

// Payment is the persisted record of a tracking number's full lifecycle.
// TrackingNumber is unique and immutable for the payment's lifetime.
type Payment struct {
	ID             string // UUID
	TrackingNumber int64
	GatewayName    string
	Amount         Money
	Status         PaymentStatus
	Transactions   []Transaction
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TransactionOf returns the most recent transaction of the given type.
// The cross-phase lookup key is (TrackingNumber, TransactionType); refund
// recovers the verify-phase token through this.
func (p *Payment) TransactionOf(t TransactionType) (*Transaction, bool) {
	for i := len(p.Transactions) - 1; i >= 0; i-- {
		if p.Transactions[i].Type == t {
			return &p.Transactions[i], true
		}
	}
	return nil, false
}

// IsVerified reports whether the payment holds a succeeded verify transaction.
func (p *Payment) IsVerified() bool {
	tx, ok := p.TransactionOf(TransactionTypeVerify)
	return ok && tx.IsSucceed
}
