package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TypeProduct is the record-store type name for products.
const TypeProduct = "Product"

// Product is a gift card listed for sale. It is keyed by (brand, card ID)
// and removed from the store when purchased.
type Product struct {
	SellerName string          `json:"seller_name"`
	Brand      string          `json:"brand"`
	CardID     string          `json:"card_id"`
	Value      decimal.Decimal `json:"value"`
	Price      decimal.Decimal `json:"price"`
}

const dollarFormatReason = "must be a valid dollar value (dollar sign and " +
	"cents are mandatory, minus sign if any precedes dollar sign, commas optional)"

// NewProduct validates field formats and cross-field consistency, in
// order: seller name and brand required, card ID exactly ten digits,
// value then price strictly dollar-formatted, price positive, value
// positive, value strictly greater than price. The first failing check
// wins; nothing is persisted here. Whether the seller actually exists is
// checked by the market layer, which has the store.
func NewProduct(sellerName, brand, cardID, value, price string) (*Product, error) {
	seller := NormalizeName(sellerName)
	if seller == "" {
		return nil, &ValidationError{Field: "seller_name", Reason: "is required"}
	}
	normBrand := NormalizeName(brand)
	if normBrand == "" {
		return nil, &ValidationError{Field: "brand", Reason: "is required"}
	}
	if !ValidCardID(cardID) {
		return nil, &ValidationError{Field: "card_id", Reason: "must be a 10-digit card ID"}
	}
	cardValue, ok := ParseDollar(value)
	if !ok {
		return nil, &ValidationError{Field: "value", Reason: dollarFormatReason}
	}
	salePrice, ok := ParseDollar(price)
	if !ok {
		return nil, &ValidationError{Field: "price", Reason: dollarFormatReason}
	}
	if !salePrice.IsPositive() {
		return nil, &ValidationError{Field: "price", Reason: "must be more than $0"}
	}
	if !cardValue.IsPositive() {
		return nil, &ValidationError{Field: "value", Reason: "must be more than $0"}
	}
	if cardValue.LessThanOrEqual(salePrice) {
		return nil, &ValidationError{
			Field:  "value",
			Reason: fmt.Sprintf("(%s) must be more than price (%s)", FormatDollar(cardValue), FormatDollar(salePrice)),
		}
	}
	return &Product{
		SellerName: seller,
		Brand:      normBrand,
		CardID:     cardID,
		Value:      cardValue,
		Price:      salePrice,
	}, nil
}

// RecordType implements Record.
func (p *Product) RecordType() string { return TypeProduct }

// RecordKeys implements Record. Products are keyed by brand and card ID.
func (p *Product) RecordKeys() []string { return []string{p.Brand, p.CardID} }

// HouseCommission is the portion of the sale price the house keeps, given
// the seller's commission rate. Pure computation, no side effects.
func (p *Product) HouseCommission(rate decimal.Decimal) decimal.Decimal {
	return p.Price.Mul(rate)
}

// SellersShare is the portion of the sale price the seller keeps, net of
// the house commission.
func (p *Product) SellersShare(rate decimal.Decimal) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(1).Sub(rate))
}

// Equal compares all mutable fields between same-type instances.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.SellerName == other.SellerName &&
		p.Brand == other.Brand &&
		p.CardID == other.CardID &&
		p.Value.Equal(other.Value) &&
		p.Price.Equal(other.Price)
}
