package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"marketplace/internal/apperror"
	"marketplace/internal/events"
	"marketplace/internal/ids"
	"marketplace/internal/models"
	"marketplace/internal/repository"
)

const paymentImageFolder = "payments"

type PaymentService struct {
	payments PaymentStore
	images   ImageStore
	events   events.Publisher
	log      zerolog.Logger
}

func NewPaymentService(payments PaymentStore, images ImageStore, publisher events.Publisher, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		images:   images,
		events:   publisher,
		log:      log,
	}
}

// CreatePaymentInput carries raw form values; Amount is parsed here.
type CreatePaymentInput struct {
	Amount string
	Method models.PaymentMethod
	Timing models.PaymentTiming
	Image  *ImageUpload
}

// Create stores the reference image and then the payment record. Nothing is
// written when any input is rejected.
func (s *PaymentService) Create(ctx context.Context, input CreatePaymentInput) (models.Payment, error) {
	if input.Image == nil {
		return models.Payment{}, apperror.NewValidation("Payment reference image is required")
	}

	amount, err := models.ParseAmount(strings.TrimSpace(input.Amount))
	if err != nil {
		return models.Payment{}, apperror.NewValidation("Amount must be a number")
	}
	if amount < 0 {
		return models.Payment{}, apperror.NewValidation("Amount must not be negative")
	}
	if !input.Method.Valid() {
		return models.Payment{}, apperror.NewValidation("Invalid payment method")
	}
	if !input.Timing.Valid() {
		return models.Payment{}, apperror.NewValidation("Invalid payment timing")
	}

	ref, err := s.images.Upload(ctx, paymentImageFolder, *input.Image)
	if err != nil {
		return models.Payment{}, err
	}

	payment := models.Payment{
		ID:        ids.New(),
		Amount:    float64(amount),
		Method:    input.Method,
		Timing:    input.Timing,
		Reference: ref,
		Status:    models.PaymentStatusPending,
	}

	if err := s.payments.Create(ctx, &payment); err != nil {
		removeImage(ctx, s.images, s.log, ref)
		return models.Payment{}, storeError(err, "Payment not found")
	}

	publish(ctx, s.events, s.log, events.PaymentCreated, events.PaymentEvent{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Method:    string(payment.Method),
		Status:    string(payment.Status),
		At:        payment.CreatedAt,
	})

	return payment, nil
}

func (s *PaymentService) Get(ctx context.Context, id string) (models.Payment, error) {
	if !ids.Valid(id) {
		return models.Payment{}, apperror.NewNotFound("Payment not found")
	}
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return models.Payment{}, storeError(err, "Payment not found")
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, page Page) ([]models.Payment, int, error) {
	payments, err := s.payments.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, storeError(err, "Payment not found")
	}
	total, err := s.payments.Count(ctx)
	if err != nil {
		return nil, 0, storeError(err, "Payment not found")
	}
	return payments, total, nil
}

// Delete removes the reference image on a best-effort basis and then the
// record.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return apperror.NewNotFound("Payment not found")
	}
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "Payment not found")
	}

	removeImage(ctx, s.images, s.log, payment.Reference)

	if err := s.payments.Delete(ctx, id); err != nil {
		return storeError(err, "Payment not found")
	}

	publish(ctx, s.events, s.log, events.PaymentDeleted, events.PaymentEvent{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Status:    string(payment.Status),
	})
	return nil
}

// UpdateStatus settles a pending payment as Completed or Failed.
func (s *PaymentService) UpdateStatus(ctx context.Context, id string, next models.PaymentStatus) (models.Payment, error) {
	if !ids.Valid(id) {
		return models.Payment{}, apperror.NewNotFound("Payment not found")
	}
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return models.Payment{}, storeError(err, "Payment not found")
	}
	if !payment.Status.CanTransition(next) {
		return models.Payment{}, apperror.NewValidation("Invalid status transition")
	}

	if err := s.payments.UpdateStatus(ctx, id, payment.Status, next); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return models.Payment{}, apperror.NewValidation("Invalid status transition")
		}
		return models.Payment{}, storeError(err, "Payment not found")
	}
	payment.Status = next

	publish(ctx, s.events, s.log, events.PaymentStatusChanged, events.PaymentEvent{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Status:    string(payment.Status),
	})
	return payment, nil
}
