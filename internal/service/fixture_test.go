package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"marketplace/internal/models"
	"marketplace/internal/security"
	"marketplace/internal/service"
	"marketplace/internal/testsupport"
)

type fixture struct {
	accounts    *testsupport.Accounts
	products    *testsupport.Products
	payments    *testsupport.Payments
	store       *testsupport.ObjectStore
	publisher   *testsupport.Publisher
	revocations *testsupport.Revocations
	now         time.Time

	auth          *service.AuthService
	accountSvc    *service.AccountService
	productSvc    *service.ProductService
	paymentSvc    *service.PaymentService
	uploadService *service.UploadService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts:    testsupport.NewAccounts(),
		payments:    testsupport.NewPayments(),
		store:       testsupport.NewObjectStore(),
		publisher:   &testsupport.Publisher{},
		revocations: testsupport.NewRevocations(),
		now:         time.Now(),
	}
	f.products = testsupport.NewProducts(f.accounts)

	log := zerolog.Nop()
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	tokens, err := security.NewTokenManager("test-secret", 24*time.Hour)
	require.NoError(t, err)
	tokens = tokens.WithClock(func() time.Time { return f.now })

	f.auth, err = service.NewAuthService(f.accounts, hasher, tokens, f.revocations, f.publisher, log)
	require.NoError(t, err)

	f.uploadService = service.NewUploadService(f.store, 1<<20, log)
	f.accountSvc = service.NewAccountService(f.accounts, hasher, log)
	f.productSvc = service.NewProductService(f.products, f.uploadService, f.publisher, log)
	f.paymentSvc = service.NewPaymentService(f.payments, f.uploadService, f.publisher, log)
	return f
}

func (f *fixture) register(t *testing.T, role models.Role, email string) service.AuthResult {
	t.Helper()
	input := service.RegisterInput{
		Role:     role,
		Name:     "User " + email,
		Email:    email,
		Password: "secret1",
	}
	if role == models.RoleSeller {
		input.BusinessName = "Shop " + email
	}
	result, err := f.auth.Register(context.Background(), input)
	require.NoError(t, err)
	return result
}

func jpegUpload(name string) *service.ImageUpload {
	return &service.ImageUpload{
		Filename:    name,
		ContentType: "image/jpeg",
		Body:        bytes.NewReader(testsupport.JPEG),
	}
}

func strPtr(s string) *string { return &s }
