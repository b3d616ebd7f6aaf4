package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/apperror"
	"marketplace/internal/events"
	"marketplace/internal/models"
	"marketplace/internal/service"
	"marketplace/internal/testsupport"
)

func paymentInput() service.CreatePaymentInput {
	return service.CreatePaymentInput{
		Amount: "150.75",
		Method: models.PaymentMethodBankTransfer,
		Timing: models.PaymentTimingNow,
		Image: &service.ImageUpload{
			Filename:    "receipt.png",
			ContentType: "image/png",
			Body:        bytes.NewReader(testsupport.PNG),
		},
	}
}

func TestCreatePayment(t *testing.T) {
	f := newFixture(t)

	payment, err := f.paymentSvc.Create(context.Background(), paymentInput())
	require.NoError(t, err)
	assert.Equal(t, 150.75, payment.Amount)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.True(t, f.store.Has(payment.Reference.ExternalID))
	assert.Contains(t, payment.Reference.URL, "payments/")
	assert.Contains(t, f.publisher.Subjects(), events.PaymentCreated)
}

func TestCreatePaymentWithoutImage(t *testing.T) {
	f := newFixture(t)
	input := paymentInput()
	input.Image = nil

	_, err := f.paymentSvc.Create(context.Background(), input)
	require.Error(t, err)
	appErr, _ := apperror.As(err)
	assert.Equal(t, 400, appErr.StatusCode())

	count, _ := f.payments.Count(context.Background())
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, f.store.Len())
}

func TestCreatePaymentRejectsBadInput(t *testing.T) {
	cases := map[string]func(*service.CreatePaymentInput){
		"non numeric amount": func(in *service.CreatePaymentInput) { in.Amount = "ten dollars" },
		"empty amount":       func(in *service.CreatePaymentInput) { in.Amount = "" },
		"negative amount":    func(in *service.CreatePaymentInput) { in.Amount = "-3" },
		"nan amount":         func(in *service.CreatePaymentInput) { in.Amount = "NaN" },
		"inf amount":         func(in *service.CreatePaymentInput) { in.Amount = "Inf" },
		"infinity amount":    func(in *service.CreatePaymentInput) { in.Amount = "Infinity" },
		"oversized amount":   func(in *service.CreatePaymentInput) { in.Amount = "1e10" },
		"unknown method":     func(in *service.CreatePaymentInput) { in.Method = "Barter" },
		"unknown timing":     func(in *service.CreatePaymentInput) { in.Timing = "Someday" },
		"pdf reference":      func(in *service.CreatePaymentInput) { in.Image.Filename = "receipt.pdf" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			input := paymentInput()
			mutate(&input)

			_, err := f.paymentSvc.Create(context.Background(), input)
			assert.True(t, apperror.Is(err, apperror.Validation), "got %v", err)
			assert.Equal(t, 0, f.store.Len())
			count, _ := f.payments.Count(context.Background())
			assert.Equal(t, 0, count)
		})
	}
}

func TestCreatePaymentStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.PutErr = errors.New("bucket gone")

	_, err := f.paymentSvc.Create(context.Background(), paymentInput())
	require.Error(t, err)
	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ExternalService, appErr.Kind)
	assert.Equal(t, 500, appErr.StatusCode())

	count, _ := f.payments.Count(context.Background())
	assert.Equal(t, 0, count)
}

func TestCreatePaymentInsertFailureRemovesUpload(t *testing.T) {
	f := newFixture(t)
	f.payments.FailCreate = errors.New("db down")

	_, err := f.paymentSvc.Create(context.Background(), paymentInput())
	require.Error(t, err)
	assert.Equal(t, 0, f.store.Len())
}

func TestDeletePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payment, err := f.paymentSvc.Create(ctx, paymentInput())
	require.NoError(t, err)

	require.NoError(t, f.paymentSvc.Delete(ctx, payment.ID))
	assert.False(t, f.store.Has(payment.Reference.ExternalID))

	_, err = f.paymentSvc.Get(ctx, payment.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	err = f.paymentSvc.Delete(ctx, payment.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestDeletePaymentSurvivesStoreFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payment, err := f.paymentSvc.Create(ctx, paymentInput())
	require.NoError(t, err)
	f.store.RemoveErr = errors.New("store unavailable")

	require.NoError(t, f.paymentSvc.Delete(ctx, payment.ID))
	_, err = f.paymentSvc.Get(ctx, payment.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestListPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.paymentSvc.Create(ctx, paymentInput())
		require.NoError(t, err)
	}

	payments, total, err := f.paymentSvc.List(ctx, service.ParsePage("1", "2"))
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, 3, total)
}

func TestPaymentStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payment, err := f.paymentSvc.Create(ctx, paymentInput())
	require.NoError(t, err)

	updated, err := f.paymentSvc.UpdateStatus(ctx, payment.ID, models.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, updated.Status)
	assert.Contains(t, f.publisher.Subjects(), events.PaymentStatusChanged)

	_, err = f.paymentSvc.UpdateStatus(ctx, payment.ID, models.PaymentStatusFailed)
	assert.True(t, apperror.Is(err, apperror.Validation))

	_, err = f.paymentSvc.UpdateStatus(ctx, "missing", models.PaymentStatusFailed)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}
