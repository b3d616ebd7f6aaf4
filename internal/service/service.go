// Package service holds the marketplace's business rules: account
// authentication, the authorization guard, and product and payment
// lifecycles.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"marketplace/internal/apperror"
	"marketplace/internal/events"
	"marketplace/internal/models"
	"marketplace/internal/repository"
)

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, role models.Role, email string) (models.Account, error)
	GetByID(ctx context.Context, role models.Role, id string) (models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, role models.Role, id string, hash []byte) error
	List(ctx context.Context, role models.Role, limit, offset int) ([]models.Account, error)
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (models.Product, error)
	View(ctx context.Context, id string) (models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	AddToCart(ctx context.Context, id string) (int64, error)
	List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]models.Product, error)
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (models.Payment, error)
	List(ctx context.Context, limit, offset int) ([]models.Payment, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus) error
	Delete(ctx context.Context, id string) error
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ImageStore uploads images and removes them by external id.
type ImageStore interface {
	Upload(ctx context.Context, folder string, upload ImageUpload) (models.ImageRef, error)
	Remove(ctx context.Context, externalID string) error
}

// storeError turns a repository error into the error a caller should see.
func storeError(err error, notFoundMessage string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFound(notFoundMessage)
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.NewInternal("Something went wrong!", err)
}

func publish(ctx context.Context, publisher events.Publisher, log zerolog.Logger, subject string, data any) {
	if err := publisher.Publish(ctx, subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("publish event failed")
	}
}

// removeImage deletes an image that is no longer referenced. Failures are
// logged and swallowed.
func removeImage(ctx context.Context, images ImageStore, log zerolog.Logger, ref models.ImageRef) {
	if ref.ExternalID == "" {
		return
	}
	if err := images.Remove(ctx, ref.ExternalID); err != nil {
		log.Warn().Err(err).Str("external_id", ref.ExternalID).Msg("image delete failed")
	}
}
