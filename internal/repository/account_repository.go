package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"marketplace/internal/models"
)

type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const (
	buyerColumns  = `id, name, email, phone, address, location, password_hash, created_at, updated_at`
	sellerColumns = `id, name, email, business_name, phone, business_address, location, password_hash, created_at, updated_at`
)

// Create inserts the account into its role's table. Email uniqueness is left
// to the table's unique index.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	var row pgx.Row
	switch account.Role {
	case models.RoleBuyer:
		const query = `
			INSERT INTO buyers (id, name, email, phone, address, location, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`
		row = r.db.QueryRow(ctx, query,
			account.ID,
			account.Name,
			account.Email,
			account.Phone,
			account.Address,
			account.Location,
			account.PasswordHash,
		)
	case models.RoleSeller:
		const query = `
			INSERT INTO sellers (id, name, email, business_name, phone, business_address, location, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`
		row = r.db.QueryRow(ctx, query,
			account.ID,
			account.Name,
			account.Email,
			account.BusinessName,
			account.Phone,
			account.BusinessAddress,
			account.Location,
			account.PasswordHash,
		)
	default:
		return fmt.Errorf("unknown role %q", account.Role)
	}

	if err := row.Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert %s: %w", account.Role, err)
	}
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, role models.Role, email string) (models.Account, error) {
	switch role {
	case models.RoleBuyer:
		return scanBuyer(r.db.QueryRow(ctx, `SELECT `+buyerColumns+` FROM buyers WHERE email = $1`, email))
	case models.RoleSeller:
		return scanSeller(r.db.QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE email = $1`, email))
	}
	return models.Account{}, fmt.Errorf("unknown role %q", role)
}

func (r *AccountRepository) GetByID(ctx context.Context, role models.Role, id string) (models.Account, error) {
	switch role {
	case models.RoleBuyer:
		return scanBuyer(r.db.QueryRow(ctx, `SELECT `+buyerColumns+` FROM buyers WHERE id = $1`, id))
	case models.RoleSeller:
		return scanSeller(r.db.QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE id = $1`, id))
	}
	return models.Account{}, fmt.Errorf("unknown role %q", role)
}

// Update writes the mutable profile fields. The password hash is left alone;
// see UpdatePassword.
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	var row pgx.Row
	switch account.Role {
	case models.RoleBuyer:
		const query = `
			UPDATE buyers
			SET name = $2, phone = $3, address = $4, location = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		row = r.db.QueryRow(ctx, query,
			account.ID,
			account.Name,
			account.Phone,
			account.Address,
			account.Location,
		)
	case models.RoleSeller:
		const query = `
			UPDATE sellers
			SET name = $2, business_name = $3, phone = $4, business_address = $5, location = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		row = r.db.QueryRow(ctx, query,
			account.ID,
			account.Name,
			account.BusinessName,
			account.Phone,
			account.BusinessAddress,
			account.Location,
		)
	default:
		return fmt.Errorf("unknown role %q", account.Role)
	}

	if err := row.Scan(&account.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

// UpdatePassword replaces only the password hash so a concurrent profile
// update cannot write back a stale one.
func (r *AccountRepository) UpdatePassword(ctx context.Context, role models.Role, id string, hash []byte) error {
	var query string
	switch role {
	case models.RoleBuyer:
		query = `UPDATE buyers SET password_hash = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	case models.RoleSeller:
		query = `UPDATE sellers SET password_hash = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	var updatedAt time.Time
	if err := r.db.QueryRow(ctx, query, id, hash).Scan(&updatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context, role models.Role, limit, offset int) ([]models.Account, error) {
	var (
		query string
		scan  func(pgx.Row) (models.Account, error)
	)
	switch role {
	case models.RoleBuyer:
		query = `SELECT ` + buyerColumns + ` FROM buyers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		scan = scanBuyer
	case models.RoleSeller:
		query = `SELECT ` + sellerColumns + ` FROM sellers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		scan = scanSeller
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scan(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanBuyer(row pgx.Row) (models.Account, error) {
	account := models.Account{Role: models.RoleBuyer}
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Phone,
		&account.Address,
		&account.Location,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return models.Account{}, notFound(err)
	}
	return account, nil
}

func scanSeller(row pgx.Row) (models.Account, error) {
	account := models.Account{Role: models.RoleSeller}
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.BusinessName,
		&account.Phone,
		&account.BusinessAddress,
		&account.Location,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return models.Account{}, notFound(err)
	}
	return account, nil
}
