package models

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// Account is a buyer or a seller. Buyer rows use Address; seller rows use
// BusinessName and BusinessAddress.
type Account struct {
	ID              string
	Role            Role
	Name            string
	Email           string
	Phone           string
	Location        string
	Address         string
	BusinessName    string
	BusinessAddress string
	PasswordHash    []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BuyerPatch holds the profile fields a buyer may change.
type BuyerPatch struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Location *string `json:"location"`
}

// SellerPatch holds the profile fields a seller may change.
type SellerPatch struct {
	Name            *string `json:"name"`
	BusinessName    *string `json:"businessName"`
	Phone           *string `json:"phone"`
	BusinessAddress *string `json:"businessAddress"`
	Location        *string `json:"location"`
}

func (p BuyerPatch) Apply(a *Account) {
	setIfPresent(&a.Name, p.Name)
	setIfPresent(&a.Phone, p.Phone)
	setIfPresent(&a.Address, p.Address)
	setIfPresent(&a.Location, p.Location)
}

func (p SellerPatch) Apply(a *Account) {
	setIfPresent(&a.Name, p.Name)
	setIfPresent(&a.BusinessName, p.BusinessName)
	setIfPresent(&a.Phone, p.Phone)
	setIfPresent(&a.BusinessAddress, p.BusinessAddress)
	setIfPresent(&a.Location, p.Location)
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Identity is the caller resolved by an authentication strategy.
type Identity struct {
	AccountID string
	Role      Role
	IssuedAt  time.Time
	// ExpiresAt is zero for identities built from replayed credentials.
	ExpiresAt time.Time
	TokenID   string
	Strategy  string
}
