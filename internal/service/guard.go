package service

import (
	"bytes"
	"encoding/json"

	"marketplace/internal/apperror"
	"marketplace/internal/models"
)

// Fields each role may change on its profile, and owners on a product.
var (
	BuyerUpdateFields   = []string{"name", "phone", "address", "location"}
	SellerUpdateFields  = []string{"name", "businessName", "phone", "businessAddress", "location"}
	ProductUpdateFields = []string{"name", "price", "category", "description", "address", "image", "status"}
)

// CredentialFields are consumed by the credential replay strategy and are
// never part of an update.
var CredentialFields = []string{"email", "password"}

const invalidUpdates = "Invalid updates"

func RequireRole(identity models.Identity, roles ...models.Role) error {
	for _, role := range roles {
		if identity.Role == role {
			return nil
		}
	}
	return apperror.NewForbidden("Access denied")
}

func RequireOwnership(identity models.Identity, ownerID string) error {
	if identity.AccountID == "" || identity.AccountID != ownerID {
		return apperror.NewForbidden("Access denied")
	}
	return nil
}

// DecodePatch decodes a JSON object into dst. Every key must be in allowed
// or ignored, otherwise the whole update is rejected. Ignored keys are
// dropped before decoding.
func DecodePatch(body []byte, allowed, ignored []string, dst any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return apperror.NewValidation(invalidUpdates)
	}

	allow := make(map[string]struct{}, len(allowed))
	for _, key := range allowed {
		allow[key] = struct{}{}
	}
	for _, key := range ignored {
		delete(raw, key)
	}
	for key := range raw {
		if _, ok := allow[key]; !ok {
			return apperror.NewValidation(invalidUpdates)
		}
	}

	filtered, err := json.Marshal(raw)
	if err != nil {
		return apperror.NewValidation(invalidUpdates)
	}

	dec := json.NewDecoder(bytes.NewReader(filtered))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidation(invalidUpdates)
	}
	return nil
}

// ProfileFields returns the update allow-list for role.
func ProfileFields(role models.Role) []string {
	if role == models.RoleSeller {
		return SellerUpdateFields
	}
	return BuyerUpdateFields
}
