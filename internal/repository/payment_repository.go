package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"marketplace/internal/models"
)

type PaymentRepository struct {
	db DB
}

func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, amount, payment_method, payment_timing, reference_external_id, reference_url, status, created_at`

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	const query = `
		INSERT INTO payments (id, amount, payment_method, payment_timing, reference_external_id, reference_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		payment.ID,
		payment.Amount,
		payment.Method,
		payment.Timing,
		payment.Reference.ExternalID,
		payment.Reference.URL,
		payment.Status,
	).Scan(&payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (models.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (r *PaymentRepository) List(ctx context.Context, limit, offset int) ([]models.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *PaymentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus moves a payment from one status to another. It fails with
// ErrStaleStatus when the stored status is no longer from.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE payments SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (models.Payment, error) {
	var payment models.Payment
	if err := row.Scan(
		&payment.ID,
		&payment.Amount,
		&payment.Method,
		&payment.Timing,
		&payment.Reference.ExternalID,
		&payment.Reference.URL,
		&payment.Status,
		&payment.CreatedAt,
	); err != nil {
		return models.Payment{}, notFound(err)
	}
	return payment, nil
}
