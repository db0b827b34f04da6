package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound              = errors.New("entity not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrOperationFailed       = errors.New("operation failed")
	ErrReadDatabaseRow       = errors.New("failed to read database row")
	ErrDuplicateTracking     = errors.New("tracking number already exists")
	ErrPaymentAlreadyHandled = errors.New("payment already processed")
	ErrPaymentNotVerified    = errors.New("payment has not been verified")

	// Local configuration/invariant errors. These indicate a programming or
	// configuration defect, never a bank-side outcome, and are surfaced as hard
	// errors instead of failed payment results.
	ErrGatewayNotRegistered = errors.New("gateway not registered")
	ErrGatewayTypeNotSet    = errors.New("gateway type not set")
	ErrAmountNotSet         = errors.New("amount not set")
	ErrCallbackURLNotSet    = errors.New("callback url not set")
	ErrTransactionNotFound  = errors.New("no transaction record found for payment")
	ErrTokenNotFound        = errors.New("no token found for payment")
	ErrRefundNotSupported   = errors.New("gateway does not support refund")
)
