package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"marketplace/internal/apperror"
	"marketplace/internal/models"
	"marketplace/internal/security"
)

type AccountService struct {
	accounts AccountStore
	hasher   *security.PasswordHasher
	log      zerolog.Logger
}

func NewAccountService(accounts AccountStore, hasher *security.PasswordHasher, log zerolog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		log:      log,
	}
}

func (s *AccountService) Profile(ctx context.Context, identity models.Identity) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, identity.Role, identity.AccountID)
	if err != nil {
		return models.Account{}, storeError(err, "Account not found")
	}
	return account, nil
}

// UpdateProfile applies a strict patch to the caller's own profile. Keys
// listed in ignored are dropped before the allow-list check.
func (s *AccountService) UpdateProfile(ctx context.Context, identity models.Identity, body []byte, ignored []string) (models.Account, error) {
	apply, err := decodeProfilePatch(identity.Role, body, ignored)
	if err != nil {
		return models.Account{}, err
	}

	account, err := s.Profile(ctx, identity)
	if err != nil {
		return models.Account{}, err
	}

	apply(&account)

	if err := s.accounts.Update(ctx, &account); err != nil {
		return models.Account{}, storeError(err, "Account not found")
	}
	return account, nil
}

func decodeProfilePatch(role models.Role, body []byte, ignored []string) (func(*models.Account), error) {
	switch role {
	case models.RoleBuyer:
		var patch models.BuyerPatch
		if err := DecodePatch(body, BuyerUpdateFields, ignored, &patch); err != nil {
			return nil, err
		}
		return patch.Apply, nil
	case models.RoleSeller:
		var patch models.SellerPatch
		if err := DecodePatch(body, SellerUpdateFields, ignored, &patch); err != nil {
			return nil, err
		}
		return patch.Apply, nil
	}
	return nil, apperror.NewForbidden("Access denied")
}

// ChangePassword replaces the stored hash after checking the current
// password.
func (s *AccountService) ChangePassword(ctx context.Context, identity models.Identity, current, next string) error {
	if len(next) < MinPasswordLength {
		return apperror.NewValidation("Password must be at least 6 characters")
	}

	account, err := s.Profile(ctx, identity)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, account.PasswordHash) {
		return apperror.NewUnauthenticated(msgInvalidCredentials, nil)
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return apperror.NewValidation("Password is too long")
		}
		return apperror.NewInternal("Something went wrong!", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.Role, account.ID, hash); err != nil {
		return storeError(err, "Account not found")
	}
	return nil
}

func (s *AccountService) List(ctx context.Context, role models.Role, page Page) ([]models.Account, error) {
	if !role.Valid() {
		return nil, apperror.NewValidation("Unknown account type")
	}
	accounts, err := s.accounts.List(ctx, role, page.Limit, page.Offset)
	if err != nil {
		return nil, storeError(err, "Account not found")
	}
	return accounts, nil
}
