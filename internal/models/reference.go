package models

import (
	"fmt"
	"strings"
)

// ProductType is the kind of product a purchase reference points at.
type ProductType string

const (
	ProductSlot    ProductType = "slot"
	ProductListing ProductType = "listing"
)

// PurchaseRef carries purchase intent through the payment provider's opaque
// reference-id field as "<productType>_<productID>_<userID>". It is the only
// channel linking a provider order back to a purchase, so the format is a hard
// contract: exactly three underscore-delimited fields, no escaping. Malformed
// input is rejected, never defaulted.
type PurchaseRef struct {
	Type      ProductType
	ProductID string
	UserID    string
}

// FormatPurchaseRef encodes a reference id for session creation.
func FormatPurchaseRef(ref PurchaseRef) string {
	return fmt.Sprintf("%s_%s_%s", ref.Type, ref.ProductID, ref.UserID)
}

// ParsePurchaseRef decodes a reference id received back from the provider.
func ParsePurchaseRef(s string) (PurchaseRef, error) {
	parts := strings.SplitN(s, "_", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return PurchaseRef{}, fmt.Errorf("malformed purchase reference %q", s)
	}

	ref := PurchaseRef{Type: ProductType(parts[0]), ProductID: parts[1], UserID: parts[2]}
	switch ref.Type {
	case ProductSlot, ProductListing:
		return ref, nil
	default:
		return PurchaseRef{}, fmt.Errorf("unknown product type %q in purchase reference", parts[0])
	}
}
