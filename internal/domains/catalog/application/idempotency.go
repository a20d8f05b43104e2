package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

type normalizedCreateProduct struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	ImageKeys   []string `json:"imageKeys"`
	Featured    bool     `json:"featured"`
}

// FingerprintCreateProduct builds a deterministic hash of the creation
// payload, excluding the idempotency key itself.
func FingerprintCreateProduct(input ports.CreateProductInput) (string, error) {
	normalized := normalizedCreateProduct{
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		ImageKeys:   input.ImageKeys,
		Featured:    input.Featured,
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
