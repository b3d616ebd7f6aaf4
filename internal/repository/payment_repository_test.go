package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/models"
)

func TestPaymentCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewPaymentRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs("pay1", 25.0, models.PaymentMethodCash, models.PaymentTimingNow, "payments/x.jpg", "https://cdn/x.jpg", models.PaymentStatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	payment := &models.Payment{
		ID:        "pay1",
		Amount:    25,
		Method:    models.PaymentMethodCash,
		Timing:    models.PaymentTimingNow,
		Reference: models.ImageRef{ExternalID: "payments/x.jpg", URL: "https://cdn/x.jpg"},
		Status:    models.PaymentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), payment))
	assert.Equal(t, now, payment.CreatedAt)
}

func TestPaymentUpdateStatusStale(t *testing.T) {
	mock := newMock(t)
	repo := NewPaymentRepository(mock)

	mock.ExpectExec(`UPDATE payments SET status = \$3 WHERE id = \$1 AND status = \$2`).
		WithArgs("pay1", models.PaymentStatusPending, models.PaymentStatusCompleted).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "pay1", models.PaymentStatusPending, models.PaymentStatusCompleted)
	assert.ErrorIs(t, err, ErrStaleStatus)
}

func TestPaymentCount(t *testing.T) {
	mock := newMock(t)
	repo := NewPaymentRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
