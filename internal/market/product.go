package market

import (
	"context"
	"fmt"
	"log"

	"giftcard-market/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt records a completed purchase.
type Receipt struct {
	ID              uuid.UUID
	Buyer           string
	Seller          string
	Brand           string
	CardID          string
	Price           decimal.Decimal
	HouseCommission decimal.Decimal
	SellersShare    decimal.Decimal
}

// GetProduct fetches a product by its (brand, card ID) composite key,
// returning a NotFoundError when absent.
func (m *Market) GetProduct(ctx context.Context, brand, cardID string) (*domain.Product, error) {
	return getRecord[domain.Product](ctx, m, domain.TypeProduct, []string{domain.NormalizeName(brand), cardID})
}

// FetchProduct is GetProduct without the error on miss.
func (m *Market) FetchProduct(ctx context.Context, brand, cardID string) (*domain.Product, error) {
	return fetchRecord[domain.Product](ctx, m, domain.TypeProduct, []string{domain.NormalizeName(brand), cardID})
}

// ListProduct puts a gift card up for sale. A product already stored
// under (brand, cardID) is a DuplicateKeyError, never an overwrite. Field
// and cross-field validation happen in domain.NewProduct; the seller must
// resolve to an existing account. Nothing is persisted on any failure.
func (m *Market) ListProduct(ctx context.Context, sellerName, brand, cardID, value, price string) (*domain.Product, error) {
	existing, err := m.FetchProduct(ctx, brand, cardID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.DuplicateKeyError{Type: domain.TypeProduct, Keys: existing.RecordKeys()}
	}

	product, err := domain.NewProduct(sellerName, brand, cardID, value, price)
	if err != nil {
		return nil, err
	}

	seller, err := m.FetchAccount(ctx, product.SellerName)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, &domain.ValidationError{
			Field:  "seller_name",
			Reason: fmt.Sprintf("'%s' not found", product.SellerName),
		}
	}

	if err := m.persist(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// BuyProduct resolves the product by key and completes the purchase.
func (m *Market) BuyProduct(ctx context.Context, buyerName, brand, cardID string) (*Receipt, error) {
	product, err := m.GetProduct(ctx, brand, cardID)
	if err != nil {
		return nil, err
	}
	return m.Buy(ctx, product, buyerName)
}

// Buy completes the purchase of product by the named buyer: debit the
// buyer by the price, credit the house with the commission, credit the
// seller with the remainder, delete the listing. The buyer is resolved
// before any mutation, so an unknown buyer changes nothing. The seller is
// re-validated too; sellers are checked at listing time, so a miss here
// means the account was removed out-of-band and the command fails.
//
// The four steps are not atomic. A store failure mid-sequence leaves
// partial state (e.g. buyer debited, house not yet credited); providing a
// transaction boundary around them is an explicit extension point, not
// something this method papers over.
func (m *Market) Buy(ctx context.Context, product *domain.Product, buyerName string) (*Receipt, error) {
	buyer, err := m.GetAccount(ctx, buyerName)
	if err != nil {
		return nil, err
	}
	seller, err := m.GetAccount(ctx, product.SellerName)
	if err != nil {
		return nil, err
	}

	commission := product.HouseCommission(seller.CommissionRate)
	share := product.SellersShare(seller.CommissionRate)

	buyer.Debit(product.Price)
	if err := m.persist(ctx, buyer); err != nil {
		return nil, err
	}

	// Re-fetch before each credit so a buyer doubling as seller or house
	// sees the earlier delta instead of losing it.
	house, err := m.HouseAccount(ctx)
	if err != nil {
		return nil, err
	}
	house.Credit(commission)
	if err := m.persist(ctx, house); err != nil {
		return nil, err
	}

	seller, err = m.GetAccount(ctx, product.SellerName)
	if err != nil {
		return nil, err
	}
	seller.Credit(share)
	if err := m.persist(ctx, seller); err != nil {
		return nil, err
	}

	if err := m.remove(ctx, product); err != nil {
		return nil, err
	}

	receipt := &Receipt{
		ID:              uuid.New(),
		Buyer:           buyer.Name,
		Seller:          seller.Name,
		Brand:           product.Brand,
		CardID:          product.CardID,
		Price:           product.Price,
		HouseCommission: commission,
		SellersShare:    share,
	}
	if m.debug {
		log.Printf("[Market] purchase %s: %s bought %s:%s from %s for %s",
			receipt.ID, receipt.Buyer, receipt.Brand, receipt.CardID, receipt.Seller, domain.FormatDollar(receipt.Price))
	}
	return receipt, nil
}
