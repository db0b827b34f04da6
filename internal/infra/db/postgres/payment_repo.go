package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

func (r *paymentRepo) Save(ctx context.Context, p *model.Payment) error {
	const q = `
INSERT INTO payments (id, tracking_number, gateway, amount, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	_, err := r.pool.Exec(ctx, q, p.ID, p.TrackingNumber, p.GatewayName, p.Amount.String(), p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateTracking
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByTrackingNumber(ctx context.Context, trackingNumber int64) (*model.Payment, error) {
	const q = `SELECT id, tracking_number, gateway, amount, status, created_at, updated_at
FROM payments WHERE tracking_number=$1;`

	var (
		p      model.Payment
		amount string
	)
	row := r.pool.QueryRow(ctx, q, trackingNumber)
	if err := row.Scan(&p.ID, &p.TrackingNumber, &p.GatewayName, &amount, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	m, err := model.ParseMoney(amount)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	p.Amount = m

	txs, err := r.transactionsFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Transactions = txs
	return &p, nil
}

func (r *paymentRepo) transactionsFor(ctx context.Context, paymentID string) ([]model.Transaction, error) {
	const q = `SELECT id, tracking_number, type, is_succeed, message, additional_data, created_at
FROM payment_transactions WHERE payment_id=$1 ORDER BY created_at;`

	rows, err := r.pool.Query(ctx, q, paymentID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var (
			tx   model.Transaction
			data []byte
		)
		if err := rows.Scan(&tx.ID, &tx.TrackingNumber, &tx.Type, &tx.IsSucceed, &tx.Message, &data, &tx.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &tx.AdditionalData); err != nil {
				return nil, domain.ErrReadDatabaseRow
			}
		}
		txs = append(txs, tx)
	}
	if rows.Err() != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return txs, nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	const q = `UPDATE payments SET status=$2, updated_at=NOW() WHERE id=$1;`
	ct, err := r.pool.Exec(ctx, q, id, status)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentRepo) ExpireInitiatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `UPDATE payments SET status=$1, updated_at=NOW()
WHERE status=$2 AND updated_at < $3;`
	ct, err := r.pool.Exec(ctx, q, model.PaymentStatusFailed, model.PaymentStatusInitiated, cutoff)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return ct.RowsAffected(), nil
}

func (r *paymentRepo) AddTransaction(ctx context.Context, paymentID string, tx *model.Transaction) error {
	const q = `
INSERT INTO payment_transactions (id, payment_id, tracking_number, type, is_succeed, message, additional_data, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	data, err := json.Marshal(tx.AdditionalData)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	if _, err := r.pool.Exec(ctx, q, tx.ID, paymentID, tx.TrackingNumber, tx.Type, tx.IsSucceed, tx.Message, data, tx.CreatedAt); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}
