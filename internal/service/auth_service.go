package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"marketplace/internal/apperror"
	"marketplace/internal/config"
	"marketplace/internal/events"
	"marketplace/internal/ids"
	"marketplace/internal/models"
	"marketplace/internal/repository"
	"marketplace/internal/security"
)

const (
	MinPasswordLength = 6

	msgInvalidCredentials = "Invalid email or password"
	msgNoToken            = "No token provided"
	msgInvalidToken       = "Invalid token"
)

type AuthService struct {
	accounts  AccountStore
	hasher    *security.PasswordHasher
	tokens    *security.TokenManager
	revoked   TokenRevoker
	events    events.Publisher
	validate  *validator.Validate
	dummyHash []byte
	log       zerolog.Logger
}

func NewAuthService(
	accounts AccountStore,
	hasher *security.PasswordHasher,
	tokens *security.TokenManager,
	revoked TokenRevoker,
	publisher events.Publisher,
	log zerolog.Logger,
) (*AuthService, error) {
	// Compared against when an email is unknown so both failure paths cost
	// one bcrypt comparison.
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}

	return &AuthService{
		accounts:  accounts,
		hasher:    hasher,
		tokens:    tokens,
		revoked:   revoked,
		events:    publisher,
		validate:  validator.New(),
		dummyHash: dummy,
		log:       log,
	}, nil
}

type RegisterInput struct {
	Role            models.Role
	Name            string
	Email           string
	Password        string
	Phone           string
	Location        string
	Address         string
	BusinessName    string
	BusinessAddress string
}

type AuthResult struct {
	Token    string
	Identity models.Identity
	Account  models.Account
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = NormalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	if !input.Role.Valid() {
		return AuthResult{}, apperror.NewValidation("Unknown account type")
	}
	if input.Name == "" {
		return AuthResult{}, apperror.NewValidation("Name is required")
	}
	if err := s.validate.Var(input.Email, "required,email"); err != nil {
		return AuthResult{}, apperror.NewValidation("Email is invalid")
	}
	if len(input.Password) < MinPasswordLength {
		return AuthResult{}, apperror.NewValidation("Password must be at least 6 characters")
	}
	if input.Role == models.RoleSeller && strings.TrimSpace(input.BusinessName) == "" {
		return AuthResult{}, apperror.NewValidation("Business name is required")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return AuthResult{}, apperror.NewValidation("Password is too long")
		}
		return AuthResult{}, apperror.NewInternal("Something went wrong!", err)
	}

	account := models.Account{
		ID:           ids.New(),
		Role:         input.Role,
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Location:     input.Location,
		PasswordHash: hash,
	}
	if input.Role == models.RoleBuyer {
		account.Address = input.Address
	} else {
		account.BusinessName = strings.TrimSpace(input.BusinessName)
		account.BusinessAddress = input.BusinessAddress
	}

	if err := s.accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, apperror.NewDuplicateEmail(err)
		}
		return AuthResult{}, apperror.NewInternal("Something went wrong!", err)
	}

	publish(ctx, s.events, s.log, events.AccountRegistered, events.AccountRegisteredEvent{
		AccountID:    account.ID,
		Role:         string(account.Role),
		RegisteredAt: account.CreatedAt,
	})

	return s.issue(account)
}

func (s *AuthService) Login(ctx context.Context, role models.Role, email, password string) (AuthResult, error) {
	account, err := s.VerifyCredentials(ctx, role, email, password)
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(account)
}

// VerifyCredentials checks an email and password pair against the role's
// accounts. Unknown email and wrong password are indistinguishable.
func (s *AuthService) VerifyCredentials(ctx context.Context, role models.Role, email, password string) (models.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return models.Account{}, apperror.NewValidation("Email and password are required")
	}

	account, err := s.accounts.FindByEmail(ctx, role, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return models.Account{}, apperror.NewUnauthenticated(msgInvalidCredentials, nil)
		}
		return models.Account{}, apperror.NewInternal("Something went wrong!", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return models.Account{}, apperror.NewUnauthenticated(msgInvalidCredentials, nil)
	}
	return account, nil
}

// Authenticate resolves a bearer token to an identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	identity, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenMissing) {
			return models.Identity{}, apperror.NewUnauthenticated(msgNoToken, err)
		}
		return models.Identity{}, apperror.NewUnauthenticated(msgInvalidToken, err)
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, identity.TokenID)
		if err != nil {
			return models.Identity{}, apperror.NewInternal("Something went wrong!", err)
		}
		if revoked {
			return models.Identity{}, apperror.NewUnauthenticated(msgInvalidToken, security.ErrTokenRevoked)
		}
	}

	identity.Strategy = config.StrategyToken
	return identity, nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, identity models.Identity) error {
	if identity.TokenID == "" || s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return apperror.NewInternal("Something went wrong!", err)
	}
	return nil
}

func (s *AuthService) issue(account models.Account) (AuthResult, error) {
	token, identity, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return AuthResult{}, apperror.NewInternal("Something went wrong!", err)
	}
	identity.Strategy = config.StrategyToken
	return AuthResult{
		Token:    token,
		Identity: identity,
		Account:  account,
	}, nil
}
