// Package testsupport provides in-memory stand-ins for the Postgres, Redis,
// object store and broker adapters.
package testsupport

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repository"
)

type Accounts struct {
	mu   sync.Mutex
	rows map[models.Role]map[string]models.Account
}

func NewAccounts() *Accounts {
	return &Accounts{rows: map[models.Role]map[string]models.Account{
		models.RoleBuyer:  {},
		models.RoleSeller: {},
	}}
}

func (a *Accounts) Create(_ context.Context, account *models.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	table, ok := a.rows[account.Role]
	if !ok {
		return errors.New("unknown role")
	}
	for _, existing := range table {
		if existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	table[account.ID] = cloneAccount(*account)
	return nil
}

func (a *Accounts) FindByEmail(_ context.Context, role models.Role, email string) (models.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, account := range a.rows[role] {
		if account.Email == email {
			return cloneAccount(account), nil
		}
	}
	return models.Account{}, repository.ErrNotFound
}

func (a *Accounts) GetByID(_ context.Context, role models.Role, id string) (models.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	account, ok := a.rows[role][id]
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	return cloneAccount(account), nil
}

func (a *Accounts) Update(_ context.Context, account *models.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stored, ok := a.rows[account.Role][account.ID]
	if !ok {
		return repository.ErrNotFound
	}
	account.Email = stored.Email
	account.PasswordHash = stored.PasswordHash
	account.CreatedAt = stored.CreatedAt
	account.UpdatedAt = time.Now().UTC()
	a.rows[account.Role][account.ID] = cloneAccount(*account)
	return nil
}

func (a *Accounts) UpdatePassword(_ context.Context, role models.Role, id string, hash []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stored, ok := a.rows[role][id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.PasswordHash = append([]byte(nil), hash...)
	stored.UpdatedAt = time.Now().UTC()
	a.rows[role][id] = stored
	return nil
}

func (a *Accounts) List(_ context.Context, role models.Role, limit, offset int) ([]models.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.Account, 0, len(a.rows[role]))
	for _, account := range a.rows[role] {
		out = append(out, cloneAccount(account))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

// Count returns how many accounts of role exist.
func (a *Accounts) Count(role models.Role) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rows[role])
}

func (a *Accounts) sellerSummary(id string) (*models.SellerSummary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	seller, ok := a.rows[models.RoleSeller][id]
	if !ok {
		return nil, false
	}
	return &models.SellerSummary{
		ID:           seller.ID,
		Name:         seller.Name,
		BusinessName: seller.BusinessName,
		Email:        seller.Email,
	}, true
}

func cloneAccount(a models.Account) models.Account {
	a.PasswordHash = append([]byte(nil), a.PasswordHash...)
	return a
}

type Products struct {
	mu       sync.Mutex
	rows     map[string]models.Product
	seq      int
	order    map[string]int
	accounts *Accounts

	// FailUpdate makes the next Update return this error.
	FailUpdate error
	// FailCreate makes the next Create return this error.
	FailCreate error
	// FailAddToCart makes the next AddToCart return this error.
	FailAddToCart error
}

func NewProducts(accounts *Accounts) *Products {
	return &Products{
		rows:     map[string]models.Product{},
		order:    map[string]int{},
		accounts: accounts,
	}
}

func (p *Products) Create(_ context.Context, product *models.Product) error {
	if _, ok := p.accounts.sellerSummary(product.SellerID); !ok {
		return repository.ErrNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.FailCreate; err != nil {
		p.FailCreate = nil
		return err
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	p.seq++
	p.order[product.ID] = p.seq
	stored := *product
	stored.Seller = nil
	p.rows[product.ID] = stored
	return nil
}

func (p *Products) GetByID(_ context.Context, id string) (models.Product, error) {
	p.mu.Lock()
	product, ok := p.rows[id]
	p.mu.Unlock()
	if !ok {
		return models.Product{}, repository.ErrNotFound
	}
	return p.withSeller(product)
}

func (p *Products) View(_ context.Context, id string) (models.Product, error) {
	p.mu.Lock()
	product, ok := p.rows[id]
	if ok {
		product.Views++
		p.rows[id] = product
	}
	p.mu.Unlock()
	if !ok {
		return models.Product{}, repository.ErrNotFound
	}
	return p.withSeller(product)
}

func (p *Products) Update(_ context.Context, product *models.Product) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.FailUpdate; err != nil {
		p.FailUpdate = nil
		return err
	}
	stored, ok := p.rows[product.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name = product.Name
	stored.Price = product.Price
	stored.Category = product.Category
	stored.Description = product.Description
	stored.Address = product.Address
	stored.Image = product.Image
	stored.Status = product.Status
	stored.UpdatedAt = time.Now().UTC()
	product.UpdatedAt = stored.UpdatedAt
	p.rows[product.ID] = stored
	return nil
}

func (p *Products) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(p.rows, id)
	return nil
}

func (p *Products) AddToCart(_ context.Context, id string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.FailAddToCart; err != nil {
		p.FailAddToCart = nil
		return 0, err
	}
	product, ok := p.rows[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	product.InCart++
	p.rows[id] = product
	return product.InCart, nil
}

func (p *Products) List(_ context.Context, filter repository.ProductFilter, limit, offset int) ([]models.Product, error) {
	p.mu.Lock()
	matched := make([]models.Product, 0, len(p.rows))
	for _, product := range p.rows {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.SellerID != "" && product.SellerID != filter.SellerID {
			continue
		}
		matched = append(matched, product)
	}
	sort.Slice(matched, func(i, j int) bool { return p.order[matched[i].ID] > p.order[matched[j].ID] })
	p.mu.Unlock()

	out := make([]models.Product, 0, len(matched))
	for _, product := range paginate(matched, limit, offset) {
		joined, err := p.withSeller(product)
		if err != nil {
			continue
		}
		out = append(out, joined)
	}
	return out, nil
}

// Stored returns the raw row, without counting a view.
func (p *Products) Stored(id string) (models.Product, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	product, ok := p.rows[id]
	return product, ok
}

func (p *Products) withSeller(product models.Product) (models.Product, error) {
	seller, ok := p.accounts.sellerSummary(product.SellerID)
	if !ok {
		return models.Product{}, repository.ErrNotFound
	}
	product.Seller = seller
	return product, nil
}

type Payments struct {
	mu    sync.Mutex
	rows  map[string]models.Payment
	seq   int
	order map[string]int

	// FailCreate makes the next Create return this error.
	FailCreate error
	// FailAddToCart makes the next AddToCart return this error.
	FailAddToCart error
}

func NewPayments() *Payments {
	return &Payments{rows: map[string]models.Payment{}, order: map[string]int{}}
}

func (p *Payments) Create(_ context.Context, payment *models.Payment) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.FailCreate; err != nil {
		p.FailCreate = nil
		return err
	}
	payment.CreatedAt = time.Now().UTC()
	p.seq++
	p.order[payment.ID] = p.seq
	p.rows[payment.ID] = *payment
	return nil
}

func (p *Payments) GetByID(_ context.Context, id string) (models.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payment, ok := p.rows[id]
	if !ok {
		return models.Payment{}, repository.ErrNotFound
	}
	return payment, nil
}

func (p *Payments) List(_ context.Context, limit, offset int) ([]models.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.Payment, 0, len(p.rows))
	for _, payment := range p.rows {
		out = append(out, payment)
	}
	sort.Slice(out, func(i, j int) bool { return p.order[out[i].ID] > p.order[out[j].ID] })
	return paginate(out, limit, offset), nil
}

func (p *Payments) Count(context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rows), nil
}

func (p *Payments) UpdateStatus(_ context.Context, id string, from, to models.PaymentStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	payment, ok := p.rows[id]
	if !ok || payment.Status != from {
		return repository.ErrStaleStatus
	}
	payment.Status = to
	p.rows[id] = payment
	return nil
}

func (p *Payments) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(p.rows, id)
	return nil
}

// Revocations is an in-memory token deny list.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevocations() *Revocations {
	return &Revocations{revoked: map[string]time.Time{}}
}

func (r *Revocations) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = expiresAt
	return nil
}

func (r *Revocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
